package mem

import (
	"fmt"

	"github.com/sarchlab/vmsim/vm"
)

// A Storage keeps the content of the simulated physical frames. Frames that
// have never been written do not consume host memory, and their content
// reads as zero.
type Storage struct {
	numFrames int
	frameSize uint64
	data      map[vm.PFN][]byte
}

// NewStorage creates a Storage with the given number of frames, each
// frameSize bytes large.
func NewStorage(numFrames int, frameSize uint64) *Storage {
	if numFrames <= 0 {
		panic("mem: number of frames must be positive")
	}
	if frameSize == 0 {
		panic("mem: frame size must be positive")
	}

	return &Storage{
		numFrames: numFrames,
		frameSize: frameSize,
		data:      make(map[vm.PFN][]byte),
	}
}

// FrameSize returns the size of each frame in bytes.
func (s *Storage) FrameSize() uint64 {
	return s.frameSize
}

// Read returns n bytes of the given frame, starting at offset.
func (s *Storage) Read(pfn vm.PFN, offset, n uint64) ([]byte, error) {
	if err := s.checkAccess(pfn, offset, n); err != nil {
		return nil, err
	}

	frame, exists := s.data[pfn]
	if !exists {
		return make([]byte, n), nil
	}

	out := make([]byte, n)
	copy(out, frame[offset:offset+n])

	return out, nil
}

// Write stores data into the given frame, starting at offset.
func (s *Storage) Write(pfn vm.PFN, offset uint64, data []byte) error {
	if err := s.checkAccess(pfn, offset, uint64(len(data))); err != nil {
		return err
	}

	copy(s.frame(pfn)[offset:], data)

	return nil
}

// ZeroFrame clears the full content of the given frame.
func (s *Storage) ZeroFrame(pfn vm.PFN) error {
	if err := s.checkFrame(pfn); err != nil {
		return err
	}

	delete(s.data, pfn)

	return nil
}

// CopyFrame copies the full content of frame src into frame dst.
func (s *Storage) CopyFrame(dst, src vm.PFN) error {
	if err := s.checkFrame(dst); err != nil {
		return err
	}
	if err := s.checkFrame(src); err != nil {
		return err
	}

	srcFrame, exists := s.data[src]
	if !exists {
		delete(s.data, dst)
		return nil
	}

	copy(s.frame(dst), srcFrame)

	return nil
}

func (s *Storage) frame(pfn vm.PFN) []byte {
	frame, exists := s.data[pfn]
	if !exists {
		frame = make([]byte, s.frameSize)
		s.data[pfn] = frame
	}

	return frame
}

func (s *Storage) checkAccess(pfn vm.PFN, offset, n uint64) error {
	if err := s.checkFrame(pfn); err != nil {
		return err
	}

	if offset+n > s.frameSize {
		return fmt.Errorf(
			"mem: access of %d bytes at offset %d exceeds the frame size %d",
			n, offset, s.frameSize)
	}

	return nil
}

func (s *Storage) checkFrame(pfn vm.PFN) error {
	if int(pfn) >= s.numFrames {
		return fmt.Errorf("mem: frame %d out of range, %d frames exist",
			pfn, s.numFrames)
	}

	return nil
}
