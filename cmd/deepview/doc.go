// Package main serves the training dashboard backend. It trains a handwritten
// digit classifier on MNIST on demand, lets clients stop, pause and resume the
// session over HTTP, and streams progress and weight visualizations over a
// websocket.
package main
