// SPDX-License-Identifier: MIT
package recorder

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"viscore/internal/analyzer"
	applog "viscore/internal/log"
)

// tap mirrors captured frames into a WAV file. The active flag is atomic
// so the capture callback can skip the tap without taking the lock.
type tap struct {
	active atomic.Int32

	mu   sync.Mutex
	file *os.File
	enc  *wav.Encoder
	pcm  *audio.IntBuffer
}

func (t *tap) start(filename string, rate, readSize int) error {
	if t.active.Load() == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.file = file
	t.enc = wav.NewEncoder(file, rate, 16, 2, 1)
	t.pcm = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  rate,
		},
		SourceBitDepth: 16,
		Data:           make([]int, readSize*2),
	}
	t.mu.Unlock()

	t.active.Store(1)
	applog.Infof("Recorder: capture tap writing to %s", filename)
	return nil
}

func (t *tap) write(frames []analyzer.Sample) {
	if t.active.Load() != 1 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enc == nil {
		return
	}

	data := t.pcm.Data[:0]
	for _, s := range frames {
		data = append(data, int(s[0]*32767), int(s[1]*32767))
	}
	t.pcm.Data = data

	if err := t.enc.Write(t.pcm); err != nil {
		applog.Errorf("Recorder: error writing WAV tap: %v", err)
	}
}

func (t *tap) stop() error {
	if t.active.Load() == 0 {
		return nil
	}
	t.active.Store(0)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enc != nil {
		if err := t.enc.Close(); err != nil {
			return err
		}
		t.enc = nil
	}
	if t.file != nil {
		if err := t.file.Close(); err != nil {
			return err
		}
		t.file = nil
	}
	return nil
}
