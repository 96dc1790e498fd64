package decoder

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rwcarlsen/goexif/exif"
)

// Result is one decoded image handed back to the controller. A failed decode
// still produces a Result (with Err set) so the file stays classifiable.
type Result struct {
	Path     string
	Img      image.Image
	Width    int
	Height   int
	FileSize int64
	Taken    time.Time
	Err      error
}

// Worker decodes images off the interactive path, one at a time. Requests
// and results travel over single-slot channels; the controller never has
// more than one decode outstanding.
type Worker struct {
	requests chan string
	results  chan Result
}

func NewWorker() *Worker {
	w := &Worker{
		requests: make(chan string, 1),
		results:  make(chan Result, 1),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for path := range w.requests {
		w.results <- decode(path)
	}
	close(w.results)
}

// Request queues path for decoding. Must not be called while a previous
// result is still unread.
func (w *Worker) Request(path string) {
	w.requests <- path
}

// Results delivers exactly one Result per Request, in request order.
func (w *Worker) Results() <-chan Result {
	return w.results
}

// Close stops the worker. A decode already in flight finishes and its result
// is dropped by nobody reading it; the buffered slot absorbs it.
func (w *Worker) Close() {
	close(w.requests)
}

func decode(path string) Result {
	res := Result{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", filepath.Base(path), err)
		return res
	}
	res.FileSize = int64(len(data))

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		res.Err = fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		return res
	}
	res.Img = img
	b := img.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()
	res.Taken = takenTime(path, data)
	return res
}

// takenTime extracts the EXIF capture date from JPEG data. Best effort only;
// missing or unreadable metadata is not an error.
func takenTime(path string, data []byte) time.Time {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
	default:
		return time.Time{}
	}
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return time.Time{}
	}
	tm, err := x.DateTime()
	if err != nil {
		return time.Time{}
	}
	return tm
}
