//go:build !nocgo
// +build !nocgo

package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	// oto allows a single context per process
	otoOnce    sync.Once
	otoContext *oto.Context
	otoErr     error
)

type otoDevice struct {
	context *oto.Context
}

func openDevice(config PlayerConfig) (Device, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   config.SampleRate,
			ChannelCount: config.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   time.Duration(config.BufferSize) * time.Second / time.Duration(config.SampleRate*config.Channels*2),
		}

		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoErr != nil {
		return nil, otoErr
	}
	return &otoDevice{context: otoContext}, nil
}

func (d *otoDevice) NewTrack(r io.Reader) (Track, error) {
	return d.context.NewPlayer(r), nil
}
