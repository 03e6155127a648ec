// Package main hosts the webpconv CLI entrypoint and command graph.
//
// convert walks a directory and encodes every matching image to webp next to
// its source, printing a summary table once the batch ends. cleanup removes
// those webp files again, history lists past batches from the SQLite store,
// and check verifies the encoder and directory permissions before a run.
//
// Keep this package lean: conversion, locking, and persistence live in the
// internal packages and are wired together here.
package main
