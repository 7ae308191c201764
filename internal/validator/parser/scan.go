package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"scan-validator/internal/validator/models"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidScan is returned for documents that are not a scan at all.
var ErrInvalidScan = errors.New("invalid scan document")

// ============================================================
// Parser
// ============================================================

// ParseScan decodes a RawScan document. Structural problems inside entities
// are left for the rules to skip; only unparsable JSON fails here.
func ParseScan(r io.Reader) (*models.RawScan, error) {
	var scan models.RawScan
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&scan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScan, err)
	}
	return &scan, nil
}

// ParseScanBytes is ParseScan over an in-memory document.
func ParseScanBytes(data []byte) (*models.RawScan, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidScan)
	}
	return ParseScan(bytes.NewReader(data))
}

// Hash is the content key of a scan document.
func Hash(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
