package hashtools

// compares digest candidates. checksums aren't usable for file naming but
// give a baseline of what streaming thru cheap hash costs.

import (
	"bytes"
	"crypto/rand"
	"hash/crc32"
	"hash/crc64"
	"io"
	"testing"

	"github.com/minio/highwayhash"
)

var crc32c = crc32.MakeTable(crc32.Castagnoli)
var crc64e = crc64.MakeTable(crc64.ECMA)

const sizeSmall = 420
const sizeBig = 2 * 1024 * 1024

var smallBuf, bigBuf []byte

var hhkey [32]byte

func init() {
	smallBuf = make([]byte, sizeSmall)
	bigBuf = make([]byte, sizeBig)
	rand.Read(smallBuf)
	rand.Read(bigBuf)
}

func BenchmarkCRC32_small(b *testing.B) {
	for i := 0; i < b.N; i++ {
		h := crc32.New(crc32c)
		io.Copy(h, bytes.NewReader(smallBuf))
		_ = h.Sum32()
	}
}

func BenchmarkCRC32_big(b *testing.B) {
	for i := 0; i < b.N; i++ {
		h := crc32.New(crc32c)
		io.Copy(h, bytes.NewReader(bigBuf))
		_ = h.Sum32()
	}
}

func BenchmarkCRC64_small(b *testing.B) {
	for i := 0; i < b.N; i++ {
		h := crc64.New(crc64e)
		io.Copy(h, bytes.NewReader(smallBuf))
		_ = h.Sum64()
	}
}

func BenchmarkCRC64_big(b *testing.B) {
	for i := 0; i < b.N; i++ {
		h := crc64.New(crc64e)
		io.Copy(h, bytes.NewReader(bigBuf))
		_ = h.Sum64()
	}
}

func BenchmarkHH_small(b *testing.B) {
	for i := 0; i < b.N; i++ {
		h, _ := highwayhash.New64(hhkey[:])
		io.Copy(h, bytes.NewReader(smallBuf))
		_ = h.Sum64()
	}
}

func BenchmarkHH_big(b *testing.B) {
	for i := 0; i < b.N; i++ {
		h, _ := highwayhash.New64(hhkey[:])
		io.Copy(h, bytes.NewReader(bigBuf))
		_ = h.Sum64()
	}
}

func benchMakeCustom(b *testing.B, typ HashTypeIDType, buf []byte) {
	for i := 0; i < b.N; i++ {
		_, _, e := MakeCustomFileHash(bytes.NewReader(buf), typ)
		if e != nil {
			b.Fatal(e)
		}
	}
}

func BenchmarkSHA2_224_small(b *testing.B)    { benchMakeCustom(b, SHA2_224, smallBuf) }
func BenchmarkSHA2_224_big(b *testing.B)     { benchMakeCustom(b, SHA2_224, bigBuf) }
func BenchmarkBLAKE2b_224_small(b *testing.B) { benchMakeCustom(b, BLAKE2b_224, smallBuf) }
func BenchmarkBLAKE2b_224_big(b *testing.B)   { benchMakeCustom(b, BLAKE2b_224, bigBuf) }
func BenchmarkBLAKE3_224_small(b *testing.B)  { benchMakeCustom(b, BLAKE3_224, smallBuf) }
func BenchmarkBLAKE3_224_big(b *testing.B)    { benchMakeCustom(b, BLAKE3_224, bigBuf) }
