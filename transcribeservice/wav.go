package transcribeservice

import (
	"bytes"
	"encoding/binary"
)

// encodeWAV wraps raw little-endian PCM samples in a minimal WAV header.
// OpenAI's transcription endpoint requires a recognized container; the
// stream protocol (stream package, spec.md §6) only ever carries bare
// PCM frames, so every synchronous transcribe call needs this step.
func encodeWAV(rawPCM []byte, sampleRate, channels, bitsPerSample int) []byte {
	var buf bytes.Buffer

	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(rawPCM)
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(rawPCM)

	return buf.Bytes()
}
