package router

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"imgtriage/internal/config"
)

// Status classifies the result of routing one file.
type Status int

const (
	Moved Status = iota
	Skipped
	Conflict
	Failed
)

// Outcome reports what happened to a single routed file. Name is the source
// base name; Dest is the destination directory (empty for skips).
type Outcome struct {
	Status Status
	Name   string
	Dest   string
	Err    error
}

func (o Outcome) String() string {
	switch o.Status {
	case Moved:
		return fmt.Sprintf("Moved %s -> %s", o.Name, o.Dest)
	case Skipped:
		return fmt.Sprintf("Skipped %s", o.Name)
	case Conflict:
		return fmt.Sprintf("Conflict: %s already exists in %s", o.Name, o.Dest)
	case Failed:
		return fmt.Sprintf("Failed: %s: %v", o.Name, o.Err)
	default:
		return ""
	}
}

// Route resolves dest for path and performs the move. Destinations are
// user-declared paths that may not exist yet, so missing directories are
// created first. An existing file at the target is never overwritten; the
// source is left untouched and Conflict is reported.
func Route(path string, dest config.Destination) Outcome {
	name := filepath.Base(path)
	if dest.Skip {
		return Outcome{Status: Skipped, Name: name}
	}

	if err := os.MkdirAll(dest.Dir, 0o755); err != nil {
		return Outcome{Status: Failed, Name: name, Dest: dest.Dir, Err: err}
	}
	target := filepath.Join(dest.Dir, name)
	if _, err := os.Lstat(target); err == nil {
		return Outcome{Status: Conflict, Name: name, Dest: dest.Dir}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Outcome{Status: Failed, Name: name, Dest: dest.Dir, Err: err}
	}

	if err := move(path, target); err != nil {
		return Outcome{Status: Failed, Name: name, Dest: dest.Dir, Err: err}
	}
	return Outcome{Status: Moved, Name: name, Dest: dest.Dir}
}

// move renames src to target, falling back to copy+delete when the rename
// fails because target is on a different filesystem. Either the file ends up
// fully at target and src is gone, or src is untouched.
func move(src, target string) error {
	err := os.Rename(src, target)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}
	if copyErr := copyFile(src, target); copyErr != nil {
		return fmt.Errorf("rename failed (%v); copy fallback: %w", err, copyErr)
	}
	return os.Remove(src)
}

func copyFile(src, target string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	written, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written != info.Size() {
		err = fmt.Errorf("short copy: wrote %d of %d bytes", written, info.Size())
	}
	if err != nil {
		// leave no partial file behind
		_ = os.Remove(target)
		return err
	}
	return nil
}
