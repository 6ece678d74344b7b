package audio

import "encoding/binary"

// wavHeaderSize is the byte length of a canonical PCM RIFF header.
const wavHeaderSize = 44

// WAV wraps little-endian 16-bit mono PCM bytes in a canonical RIFF/WAVE
// header. The transcription service expects audio/wav uploads, so segments are
// encoded once at hand-off rather than per frame.
func WAV(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, wavHeaderSize, wavHeaderSize+len(pcm))
	le := binary.LittleEndian

	copy(out[0:4], "RIFF")
	le.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	le.PutUint32(out[16:20], 16) // PCM fmt chunk size
	le.PutUint16(out[20:22], 1)  // PCM format tag
	le.PutUint16(out[22:24], channels)
	le.PutUint32(out[24:28], uint32(sampleRate))
	le.PutUint32(out[28:32], uint32(byteRate))
	le.PutUint16(out[32:34], uint16(blockAlign))
	le.PutUint16(out[34:36], bitsPerSample)

	copy(out[36:40], "data")
	le.PutUint32(out[40:44], uint32(len(pcm)))

	return append(out, pcm...)
}
