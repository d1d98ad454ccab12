package hashtools

// content digests in a form usable for filenames.

import (
	"crypto/sha256"
	"hash"
	"io"
	"math/big"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sys/cpu"
)

const HashLength = 28

type HashTypeIDType byte

const (
	_ HashTypeIDType = iota // skip first to start with non-0

	SHA2_224    // can be faster if SHA2-256 crypto instructions are available
	BLAKE2b_224 // fastest on most 64bit CPUs without dedicated crypto instructions
	BLAKE3_224  // fastest on 32bit arm stuff (without SHA2 instructions) or AVX2 supporting stuff

	hashTypeIDMax = iota - 1
)

type hasherFactoryType struct {
	newHasher func() hash.Hash
}

var hasherFactories = [hashTypeIDMax]hasherFactoryType{
	{newHasher: sha256.New224},
	{newHasher: func() hash.Hash { x, _ := blake2b.New(28, nil); return x }},
	{newHasher: func() hash.Hash { return blake3.New() }},
}
var hashCtxPools [hashTypeIDMax]sync.Pool

var (
	defaultHashTypeID    HashTypeIDType
	defaultHasherFactory hasherFactoryType
	defaultHashCtxPool   *sync.Pool
)

type hashCtxType struct {
	h       hash.Hash
	copyBuf *[32 * 1024]byte
	x       big.Int
	strBuf  [44]byte // 28 hash bytes + 1 type byte = 29 bytes; floor(log36(2^232)) + 1 = 45.. 44 holds for type bytes upto 10
}

func getHashCtx(pool *sync.Pool, factory hasherFactoryType) *hashCtxType {
	s, _ := pool.Get().(*hashCtxType)
	if s != nil {
		s.h.Reset()
	} else {
		s = &hashCtxType{
			h:       factory.newHasher(),
			copyBuf: new([32 * 1024]byte),
		}
	}
	return s
}

func pickDefaultHash(typeID HashTypeIDType) {
	defaultHashTypeID = typeID
	defaultHasherFactory = hasherFactories[typeID-1]
	defaultHashCtxPool = &hashCtxPools[typeID-1]
}

func autoPickDefaultHash() {
	// currently only ARM64 because pretty much guaranteed gain
	// afaik x86_64 golang sha256 routine can't do SHA2 instructions (yet?)
	if cpu.ARM64.HasSHA2 {
		pickDefaultHash(SHA2_224)
		return
	}
	pickDefaultHash(BLAKE2b_224)
}

func init() { autoPickDefaultHash() }

func finishFileHash(hCtx *hashCtxType, rawOut []byte) string {
	hCtx.h.Sum(hCtx.strBuf[1:][:0])

	if rawOut != nil {
		copy(rawOut, hCtx.strBuf[1:1+HashLength])
	}

	// convert to base36 number and print it.
	// this overwrites strBuf so raw hash had to be taken out before
	hCtx.x.SetBytes(hCtx.strBuf[:1+HashLength])
	xb := hCtx.x.Append(hCtx.strBuf[:0], 36)

	// flip (we want front bits to be more variable)
	for i, j := 0, len(xb)-1; i < j; i, j = i+1, j-1 {
		xb[i], xb[j] = xb[j], xb[i]
	}

	return string(xb)
}

// MakeFileHash returns textural representation of file hash for use in filename.
// It expects file to be seeked at 0.
func MakeFileHash(r io.Reader) (s string, e error) {
	hCtx := getHashCtx(defaultHashCtxPool, defaultHasherFactory)

	// first byte - hash type
	hCtx.strBuf[0] = byte(defaultHashTypeID)

	_, e = io.CopyBuffer(hCtx.h, r, hCtx.copyBuf[:])
	if e != nil {
		return
	}
	s = finishFileHash(hCtx, nil)

	defaultHashCtxPool.Put(hCtx)

	return
}

// MakeCustomFileHash is like MakeFileHash but with explicit hash type,
// and it also gives out raw hash bytes.
func MakeCustomFileHash(
	r io.Reader, typeID HashTypeIDType) (s string, h [HashLength]byte, e error) {

	factory := hasherFactories[typeID-1]
	pool := &hashCtxPools[typeID-1]

	hCtx := getHashCtx(pool, factory)

	// first byte - hash type
	hCtx.strBuf[0] = byte(typeID)

	_, e = io.CopyBuffer(hCtx.h, r, hCtx.copyBuf[:])
	if e != nil {
		return
	}
	s = finishFileHash(hCtx, h[:])

	pool.Put(hCtx)

	return
}
