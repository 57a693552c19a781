// Package trainer provides the training session orchestration: a Controller
// owning at most one active session, and the worker loop that drives an opaque
// model over a dataset, honors cooperative stop and pause requests, and
// publishes progress events with grid projections of the weights.
package trainer
