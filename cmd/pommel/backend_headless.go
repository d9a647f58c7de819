//go:build headless

package main

import "errors"

var errHeadless = errors.New("built headless, only the wav backend is available")

func newPortaudioBackend(rate int, render func([]float32)) (backend, error) {
	return nil, errHeadless
}

func newOtoBackend(rate int, render func([]float32)) (backend, error) {
	return nil, errHeadless
}
