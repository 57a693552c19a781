// Package main evaluates a checkpoint written by deepview on the MNIST test set
// and prints the classification accuracy.
package main
