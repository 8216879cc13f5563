package rig3d

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Binary clip layout, all little-endian:
//
//	name        uint32 length + bytes
//	duration    float64
//	channels    uint32
//	per channel:
//	  bone name       uint32 length + bytes
//	  key counts      uint32 position, uint32 scale, uint32 rotation
//	  position keys   (time, x, y, z) float64
//	  scale keys      (time, x, y, z) float64
//	  rotation keys   (time, x, y, z, w) float64

// maxSerializedString caps the length prefix of names so corrupt data can't trigger a huge allocation.
const maxSerializedString = 1 << 16

type clipWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (cw *clipWriter) write(data any) {
	if cw.err != nil {
		return
	}
	cw.err = binary.Write(cw.w, binary.LittleEndian, data)
	if cw.err == nil {
		cw.n += int64(binary.Size(data))
	}
}

func (cw *clipWriter) writeString(s string) {
	cw.write(uint32(len(s)))
	if cw.err != nil {
		return
	}
	written, err := cw.w.WriteString(s)
	cw.n += int64(written)
	cw.err = err
}

// WriteTo serializes the AnimationClip in rig3d's binary clip format, returning the number of bytes written.
func (clip *AnimationClip) WriteTo(w io.Writer) (int64, error) {

	cw := &clipWriter{w: bufio.NewWriter(w)}

	cw.writeString(clip.Name)
	cw.write(clip.Duration)
	cw.write(uint32(len(clip.Channels)))

	for _, channel := range clip.Channels {

		cw.writeString(channel.BoneName)
		cw.write([3]uint32{uint32(len(channel.PositionKeys)), uint32(len(channel.ScaleKeys)), uint32(len(channel.RotationKeys))})

		for _, key := range channel.PositionKeys {
			cw.write([4]float64{key.Time, key.Value.X, key.Value.Y, key.Value.Z})
		}

		for _, key := range channel.ScaleKeys {
			cw.write([4]float64{key.Time, key.Value.X, key.Value.Y, key.Value.Z})
		}

		for _, key := range channel.RotationKeys {
			cw.write([5]float64{key.Time, key.Value.X, key.Value.Y, key.Value.Z, key.Value.W})
		}

	}

	if cw.err != nil {
		return cw.n, cw.err
	}

	return cw.n, cw.w.Flush()

}

type clipReader struct {
	r   *bufio.Reader
	err error
}

func (cr *clipReader) read(data any) {
	if cr.err != nil {
		return
	}
	cr.err = binary.Read(cr.r, binary.LittleEndian, data)
}

func (cr *clipReader) readCount() int {
	var count uint32
	cr.read(&count)
	return int(count)
}

func (cr *clipReader) readString() string {
	length := cr.readCount()
	if cr.err != nil {
		return ""
	}
	if length > maxSerializedString {
		cr.err = fmt.Errorf("string length %d exceeds %d", length, maxSerializedString)
		return ""
	}
	buf := make([]byte, length)
	_, cr.err = io.ReadFull(cr.r, buf)
	return string(buf)
}

func (cr *clipReader) readVectorKeys(count int) Track[Vector] {
	track := make(Track[Vector], 0, min(count, 1024))
	for i := 0; i < count && cr.err == nil; i++ {
		var raw [4]float64
		cr.read(&raw)
		track = track.AddKeyframe(raw[0], NewVector(raw[1], raw[2], raw[3]))
	}
	return track
}

func (cr *clipReader) readQuaternionKeys(count int) Track[Quaternion] {
	track := make(Track[Quaternion], 0, min(count, 1024))
	for i := 0; i < count && cr.err == nil; i++ {
		var raw [5]float64
		cr.read(&raw)
		track = track.AddKeyframe(raw[0], NewQuaternion(raw[1], raw[2], raw[3], raw[4]))
	}
	return track
}

// ReadAnimationClip reads an AnimationClip written by AnimationClip.WriteTo. Truncated or corrupt data returns an
// error wrapping ErrMalformedClip.
func ReadAnimationClip(r io.Reader) (*AnimationClip, error) {

	cr := &clipReader{r: bufio.NewReader(r)}

	clip := NewAnimationClip(cr.readString(), 0)
	cr.read(&clip.Duration)

	channelCount := cr.readCount()

	for i := 0; i < channelCount && cr.err == nil; i++ {

		channel := NewAnimationChannel(cr.readString())

		var counts [3]uint32
		cr.read(&counts)

		channel.PositionKeys = cr.readVectorKeys(int(counts[0]))
		channel.ScaleKeys = cr.readVectorKeys(int(counts[1]))
		channel.RotationKeys = cr.readQuaternionKeys(int(counts[2]))

		clip.Channels = append(clip.Channels, channel)

	}

	if cr.err != nil {
		if errors.Is(cr.err, io.EOF) {
			cr.err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedClip, cr.err)
	}

	if math.IsNaN(clip.Duration) || clip.Duration < 0 {
		return nil, fmt.Errorf("%w: invalid duration %v", ErrMalformedClip, clip.Duration)
	}

	return clip, nil

}
