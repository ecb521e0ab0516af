package tiff

// Resources:
// https://www.fileformat.info/format/tiff/egff.htm
// http://www.awaresystems.be/imaging/tiff.html
// https://www.loc.gov/preservation/digital/formats/content/tiff_tags.shtml (Tags description)

import (
	"encoding/binary"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// State is the decoding progress of a Reader.
type State int

// Reader states, in order.
const (
	StateClosed State = iota
	StateOpened
	StateHeaderValid
	StateDecoded
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpened:
		return "opened"
	case StateHeaderValid:
		return "header-valid"
	case StateDecoded:
		return "decoded"
	default:
		return "unknown"
	}
}

// A Reader decodes the first page of a TIFF file and serves its pixels.
//
// Only the first IFD is decoded: multi-page files are truncated to page 0.
// Only uncompressed, contiguous strips are supported.
type Reader struct {
	src    Storage
	pool   *Pool
	logger *slog.Logger

	state  State
	failed error

	order  binary.ByteOrder
	header Header
	dirs   []Directory
	pages  []*Page
}

// NewReader returns a Reader over s in the opened state. Call Decode before
// querying pages.
func NewReader(s Storage, opts ...Option) (*Reader, error) {
	o := newOptions(opts)

	pool := o.pool
	if pool == nil {
		var err error
		if pool, err = NewPool(o.poolConfig); err != nil {
			return nil, err
		}
	}

	return &Reader{
		src:    s,
		pool:   pool,
		logger: o.logger,
		state:  StateOpened,
	}, nil
}

// Open opens and decodes the TIFF file at path.
func Open(path string, opts ...Option) (*Reader, error) {
	o := newOptions(opts)

	s, err := o.opener(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(s, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	if err = r.Decode(); err != nil {
		r.Close()
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}
	return r, nil
}

// Decode reads the header and the first directory and builds its page.
// A failed Decode leaves the reader permanently invalid.
func (r *Reader) Decode() error {
	if r.failed != nil {
		return r.failed
	}
	if r.state != StateOpened {
		return InternalError("decode of a reader in state " + r.state.String())
	}

	if err := r.decode(); err != nil {
		r.failed = err
		r.releasePages()
		return err
	}
	r.state = StateDecoded
	return nil
}

func (r *Reader) decode() error {
	if err := r.readHeader(); err != nil {
		return err
	}
	r.state = StateHeaderValid
	r.logger.Debug("header decoded", "order", string(r.header.Order[:]), "offset", r.header.Offset)

	d, err := r.fetchDirectory(r.header.Offset)
	if err != nil {
		return err
	}
	r.dirs = append(r.dirs, d)
	r.logger.Debug("directory fetched", "offset", d.Offset, "entries", len(d.Entries))
	if d.Next != 0 {
		r.logger.Debug("ignoring next directory", "offset", d.Next)
	}

	acc := access{src: r.src, order: r.order, pool: r.pool}
	for _, d := range r.dirs {
		p, err := newPage(acc)
		if err != nil {
			return errors.Wrap(err, "could not reserve a page buffer")
		}
		r.pages = append(r.pages, p)
		r.logger.Debug("page slot reserved", "slot", p.slot)

		if err = r.interpret(d, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) releasePages() error {
	var result error
	for _, p := range r.pages {
		if err := p.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	r.pages = nil
	return result
}

// Close releases the page buffers and closes the storage.
func (r *Reader) Close() error {
	if r.state == StateClosed {
		return nil
	}

	result := r.releasePages()
	if err := r.src.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "could not close storage"))
	}
	r.state = StateClosed
	return result
}

// State returns the decoding progress.
func (r *Reader) State() State {
	return r.state
}

// Valid reports whether the file was decoded successfully.
func (r *Reader) Valid() bool {
	return r.state == StateDecoded && r.failed == nil
}

// PageCount returns the number of decoded pages.
func (r *Reader) PageCount() int {
	if !r.Valid() {
		return 0
	}
	return len(r.pages)
}

// Page returns the i-th page.
func (r *Reader) Page(i int) (*Page, error) {
	if !r.Valid() {
		return nil, InternalError("page of a reader in state " + r.state.String())
	}
	if i < 0 || i >= len(r.pages) {
		return nil, errors.Errorf("tiff: page %d out of range [0, %d)", i, len(r.pages))
	}
	return r.pages[i], nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Directories returns the fetched directories.
func (r *Reader) Directories() []Directory {
	return r.dirs
}

// ByteOrder returns the byte order of the file, nil before the header is read.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// Swapped reports whether multi-byte values are byte-reversed relative to the host.
func (r *Reader) Swapped() bool {
	return r.order != nil && hostSwaps(r.order)
}
