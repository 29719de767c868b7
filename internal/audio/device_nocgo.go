//go:build nocgo
// +build nocgo

package audio

import "errors"

func openDevice(PlayerConfig) (Device, error) {
	return nil, errors.New("audio not available in nocgo build")
}
