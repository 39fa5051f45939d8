package osis

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/osisreader/core/errors"
	"github.com/FocuswithJustin/osisreader/core/xml"
	"github.com/FocuswithJustin/osisreader/internal/logging"
)

// MaxDocumentSize bounds the uncompressed size of a loaded document.
const MaxDocumentSize = 512 << 20

// xzMagic starts every xz stream.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// DetectResult reports whether data looks like an OSIS document.
type DetectResult struct {
	Detected bool   `json:"detected"`
	Format   string `json:"format,omitempty"`
	Reason   string `json:"reason"`
}

// Detect sniffs data for OSIS markup. Documents that only reveal themselves
// through an osisIDWork attribute are recognised after a well-formedness
// check.
func Detect(data []byte) DetectResult {
	content := string(data)
	if strings.Contains(content, "<osis") && strings.Contains(content, "osisText") {
		return DetectResult{Detected: true, Format: "OSIS", Reason: "OSIS XML detected"}
	}
	if strings.Contains(content, "osisIDWork") && xml.Validate(data, nil).Valid {
		return DetectResult{Detected: true, Format: "OSIS", Reason: "Valid OSIS XML structure"}
	}
	return DetectResult{Detected: false, Reason: "not an OSIS XML file"}
}

// Load reads, validates and parses an OSIS document from r.
func Load(r io.Reader, opts Options) (*Reader, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	return loadBytes(data, "", opts)
}

// LoadFile loads the OSIS document at path. Files ending in .xz or starting
// with the xz magic bytes are decompressed transparently.
func LoadFile(path string, opts Options) (*Reader, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var src io.Reader = br
	compressed := strings.EqualFold(filepath.Ext(path), ".xz")
	if !compressed {
		if head, _ := br.Peek(len(xzMagic)); bytes.Equal(head, xzMagic) {
			compressed = true
		}
	}
	if compressed {
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		src = xr
	}

	data, err := io.ReadAll(io.LimitReader(src, MaxDocumentSize+1))
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	r, err := loadBytes(data, path, opts)
	if err != nil {
		return nil, err
	}
	logging.DocumentLoaded(path, r.Style().String(), int64(len(data)), time.Since(start), "compressed", compressed)
	return r, nil
}

func loadBytes(data []byte, path string, opts Options) (*Reader, error) {
	if len(data) > MaxDocumentSize {
		return nil, errors.NewValidation("document", fmt.Sprintf("larger than %d bytes", MaxDocumentSize))
	}
	if res := xml.Validate(data, nil); !res.Valid {
		if len(res.Errors) == 0 {
			return nil, errors.NewParse("XML", path, "not well-formed")
		}
		return nil, errors.NewParseAt("XML", path, res.Errors[0].Line, res.Errors[0].Message)
	}
	doc, err := xml.Parse(data)
	if err != nil {
		pe := errors.NewParse("XML", path, err.Error())
		pe.Err = err
		return nil, pe
	}
	sum := blake3.Sum256(data)
	return newReader(doc, opts, hex.EncodeToString(sum[:]))
}
