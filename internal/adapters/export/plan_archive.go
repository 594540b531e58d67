package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
)

const (
	archiveFormat  = "craftplan-plans"
	archiveVersion = 1
)

// ArchiveHeader is the first line of every plan archive
type ArchiveHeader struct {
	Format     string    `json:"format"`
	Version    int       `json:"version"`
	Count      int       `json:"count"`
	ExportedAt time.Time `json:"exported_at"`
}

// ArchivedPlan is one plan line of an archive
type ArchivedPlan struct {
	ID            string         `json:"id"`
	FinalKey      string         `json:"final_key"`
	FinalAmount   int64          `json:"final_amount"`
	Mode          string         `json:"mode"`
	Outcome       string         `json:"outcome"`
	Bytes         int64          `json:"bytes"`
	Simulation    bool           `json:"simulation"`
	MultiplePaths bool           `json:"multiple_paths"`
	MissingTotal  int64          `json:"missing_total"`
	PlannedAt     time.Time      `json:"planned_at"`
	Debug         map[string]any `json:"debug,omitempty"`
}

func archivedFrom(r *crafting.PlanRecord) ArchivedPlan {
	return ArchivedPlan{
		ID:            r.ID,
		FinalKey:      r.FinalOutput.Key.String(),
		FinalAmount:   r.FinalOutput.Amount,
		Mode:          string(r.Mode),
		Outcome:       string(r.Outcome),
		Bytes:         r.Bytes,
		Simulation:    r.Simulation,
		MultiplePaths: r.MultiplePaths,
		MissingTotal:  r.MissingTotal,
		PlannedAt:     r.PlannedAt,
		Debug:         r.Debug,
	}
}

// WriteArchive writes records as zstd-compressed JSON lines: a header line,
// then one line per plan.
func WriteArchive(w io.Writer, records []*crafting.PlanRecord, exportedAt time.Time) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	jw := json.NewEncoder(bw)

	header := ArchiveHeader{Format: archiveFormat, Version: archiveVersion, Count: len(records), ExportedAt: exportedAt}
	if err := jw.Encode(header); err != nil {
		enc.Close()
		return fmt.Errorf("encode header: %w", err)
	}
	for _, r := range records {
		if err := jw.Encode(archivedFrom(r)); err != nil {
			enc.Close()
			return fmt.Errorf("encode plan %s: %w", r.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadArchive decodes an archive written by WriteArchive
func ReadArchive(r io.Reader) (ArchiveHeader, []ArchivedPlan, error) {
	var header ArchiveHeader

	dec, err := zstd.NewReader(r)
	if err != nil {
		return header, nil, err
	}
	defer dec.Close()

	jd := json.NewDecoder(bufio.NewReaderSize(dec, 64*1024))
	if err := jd.Decode(&header); err != nil {
		return header, nil, fmt.Errorf("decode header: %w", err)
	}
	if header.Format != archiveFormat {
		return header, nil, fmt.Errorf("not a plan archive (format %q)", header.Format)
	}
	if header.Version != archiveVersion {
		return header, nil, fmt.Errorf("unsupported plan archive version %d", header.Version)
	}

	plans := make([]ArchivedPlan, 0, header.Count)
	for {
		var plan ArchivedPlan
		if err := jd.Decode(&plan); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return header, nil, fmt.Errorf("decode plan %d: %w", len(plans), err)
		}
		plans = append(plans, plan)
	}
	if len(plans) != header.Count {
		return header, nil, fmt.Errorf("archive truncated: header declares %d plans, found %d", header.Count, len(plans))
	}
	return header, plans, nil
}

// WriteArchiveFile writes an archive to path, creating parent directories
func WriteArchiveFile(path string, records []*crafting.PlanRecord, exportedAt time.Time) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := WriteArchive(f, records, exportedAt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadArchiveFile reads an archive from path
func ReadArchiveFile(path string) (ArchiveHeader, []ArchivedPlan, error) {
	f, err := os.Open(path)
	if err != nil {
		return ArchiveHeader{}, nil, err
	}
	defer f.Close()
	return ReadArchive(f)
}
