// Package picker is the cascading address selector behind the registration
// form: region, then province, then city or municipality, then barangay.
//
// The picker does no I/O. Select and Start hand back a Request; the caller
// fetches it (Fetch does that against a Source) and feeds the Response to
// Deliver. Every request carries a per-level token and Deliver drops any
// response that is not the latest issued for its level, so a slow fetch for an
// abandoned selection can never overwrite newer state.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pdao-registration/internal/geo"
)

const levels = int(geo.LevelBarangay) + 1

var (
	ErrClosed        = errors.New("picker is closed")
	ErrNotLoaded     = errors.New("options are still loading")
	ErrUnknownOption = errors.New("option is not in the current list")
)

// Source lists the options at level under parentCode.
type Source interface {
	Options(ctx context.Context, level geo.Level, parentCode string) ([]geo.Area, error)
}

// Request asks for the options at Level under ParentCode.
type Request struct {
	Level      geo.Level
	ParentCode string
	Token      uint64
}

type Response struct {
	Request Request
	Options []geo.Area
	Err     error
}

// Result is the finished address, by name.
type Result struct {
	Region   string
	Province string
	City     string
	Barangay string
}

type Picker struct {
	level    geo.Level
	options  [levels][]geo.Area
	loaded   [levels]bool
	errs     [levels]error
	selected [levels]*geo.Area
	tokens   [levels]uint64
	filter   string
	closed   bool
	result   Result
}

func New() *Picker {
	return &Picker{level: geo.LevelRegion}
}

// Start issues the region request.
func (p *Picker) Start() Request {
	return p.issue(geo.LevelRegion, "")
}

func (p *Picker) issue(level geo.Level, parent string) Request {
	p.tokens[level]++
	p.options[level] = nil
	p.loaded[level] = false
	p.errs[level] = nil
	return Request{Level: level, ParentCode: parent, Token: p.tokens[level]}
}

// Deliver stores a response. It reports false when the response is stale
// and was dropped.
func (p *Picker) Deliver(resp Response) bool {
	level := resp.Request.Level
	if !level.Valid() || resp.Request.Token != p.tokens[level] {
		return false
	}

	p.loaded[level] = true
	p.errs[level] = resp.Err
	if resp.Err != nil {
		p.options[level] = nil
		return true
	}
	p.options[level] = resp.Options
	if p.options[level] == nil {
		p.options[level] = []geo.Area{}
	}
	return true
}

// Select picks code at the current level. Everything below the level is
// cleared. For the barangay level it closes the picker and returns a nil
// request; Result then holds the address.
func (p *Picker) Select(code string) (*Request, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if !p.loaded[p.level] {
		return nil, ErrNotLoaded
	}

	var picked *geo.Area
	for i := range p.options[p.level] {
		if p.options[p.level][i].Code == code {
			area := p.options[p.level][i]
			picked = &area
			break
		}
	}
	if picked == nil {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownOption, p.level, code)
	}

	p.selected[p.level] = picked
	p.filter = ""

	for below := p.level + 1; below <= geo.LevelBarangay; below++ {
		p.selected[below] = nil
		// bump the token so in-flight fetches for this level are dropped
		p.issue(below, "")
	}

	if p.level == geo.LevelBarangay {
		p.closed = true
		p.result = Result{
			Region:   p.selected[geo.LevelRegion].Name,
			Province: p.selected[geo.LevelProvince].Name,
			City:     p.selected[geo.LevelCity].Name,
			Barangay: picked.Name,
		}
		return nil, nil
	}

	p.level++
	req := p.issue(p.level, picked.Code)
	return &req, nil
}

// Back re-enters the previous level. Cached lists are kept.
func (p *Picker) Back() bool {
	if p.closed || p.level == geo.LevelRegion {
		return false
	}
	p.level--
	p.filter = ""
	return true
}

// Forward re-enters the next level when it is already loaded for the
// current selection.
func (p *Picker) Forward() bool {
	if p.closed || p.level == geo.LevelBarangay || p.selected[p.level] == nil {
		return false
	}
	if !p.loaded[p.level+1] {
		return false
	}
	p.level++
	p.filter = ""
	return true
}

// SetFilter narrows Visible to names containing text, ignoring case.
func (p *Picker) SetFilter(text string) {
	p.filter = text
}

func (p *Picker) Filter() string { return p.filter }

func (p *Picker) Level() geo.Level { return p.level }

func (p *Picker) Closed() bool { return p.closed }

// Result is the finished address. It is zero until the picker closes.
func (p *Picker) Result() (Result, bool) {
	return p.result, p.closed
}

// Loading reports whether the current level is waiting on a fetch.
func (p *Picker) Loading() bool {
	return !p.closed && !p.loaded[p.level]
}

// Err is the fetch error for the current level, if any.
func (p *Picker) Err() error {
	return p.errs[p.level]
}

// Selected returns the choice made at level.
func (p *Picker) Selected(level geo.Level) (geo.Area, bool) {
	if !level.Valid() || p.selected[level] == nil {
		return geo.Area{}, false
	}
	return *p.selected[level], true
}

// Retry reissues the request for the current level.
func (p *Picker) Retry() Request {
	parent := ""
	if p.level > geo.LevelRegion {
		if above := p.selected[p.level-1]; above != nil {
			parent = above.Code
		}
	}
	return p.issue(p.level, parent)
}

// Visible is the current level's list after the filter.
func (p *Picker) Visible() []geo.Area {
	all := p.options[p.level]
	needle := strings.ToLower(strings.TrimSpace(p.filter))
	if needle == "" {
		return all
	}

	out := make([]geo.Area, 0, len(all))
	for _, area := range all {
		if strings.Contains(strings.ToLower(area.Name), needle) {
			out = append(out, area)
		}
	}
	return out
}

// Fetch runs req against src.
func Fetch(ctx context.Context, src Source, req Request) Response {
	options, err := src.Options(ctx, req.Level, req.ParentCode)
	return Response{Request: req, Options: options, Err: err}
}
