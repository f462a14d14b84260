package picker

import (
	"context"
	"errors"
	"testing"

	"pdao-registration/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetch(t *testing.T, p *Picker, req Request) {
	t.Helper()
	require.True(t, p.Deliver(Fetch(context.Background(), geo.Default(), req)))
}

func pick(t *testing.T, p *Picker, name string) *Request {
	t.Helper()
	for _, area := range p.Visible() {
		if area.Name == name {
			req, err := p.Select(area.Code)
			require.NoError(t, err)
			return req
		}
	}
	t.Fatalf("%q not offered at %s", name, p.Level())
	return nil
}

func TestPicker_DagupanScenario(t *testing.T) {
	p := New()
	fetch(t, p, p.Start())

	fetch(t, p, *pick(t, p, "Region I"))
	fetch(t, p, *pick(t, p, "Pangasinan"))
	fetch(t, p, *pick(t, p, "Dagupan City"))
	assert.Nil(t, pick(t, p, "Bonuan Binloc"))

	result, done := p.Result()
	require.True(t, done)
	assert.Equal(t, Result{
		Region:   "Region I",
		Province: "Pangasinan",
		City:     "Dagupan City",
		Barangay: "Bonuan Binloc",
	}, result)
	assert.True(t, p.Closed())

	_, err := p.Select("015518001")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPicker_ReselectClearsDownstream(t *testing.T) {
	p := New()
	fetch(t, p, p.Start())
	fetch(t, p, *pick(t, p, "Region I"))
	fetch(t, p, *pick(t, p, "Pangasinan"))
	fetch(t, p, *pick(t, p, "Dagupan City"))
	require.Equal(t, geo.LevelBarangay, p.Level())

	require.True(t, p.Back())
	require.True(t, p.Back())
	require.Equal(t, geo.LevelProvince, p.Level())

	req := pick(t, p, "Ilocos Norte")
	require.NotNil(t, req)

	_, hasCity := p.Selected(geo.LevelCity)
	_, hasBarangay := p.Selected(geo.LevelBarangay)
	assert.False(t, hasCity)
	assert.False(t, hasBarangay)
	assert.True(t, p.Loading())
	assert.Empty(t, p.Visible())

	fetch(t, p, *req)
	names := []string{}
	for _, area := range p.Visible() {
		names = append(names, area.Name)
	}
	assert.ElementsMatch(t, []string{"Laoag City", "Batac City"}, names)
}

func TestPicker_BackKeepsCacheAndForwardReenters(t *testing.T) {
	p := New()
	fetch(t, p, p.Start())
	fetch(t, p, *pick(t, p, "Region I"))

	provinces := p.Visible()
	require.True(t, p.Back())
	assert.Equal(t, geo.LevelRegion, p.Level())
	assert.False(t, p.Loading())

	require.True(t, p.Forward())
	assert.Equal(t, geo.LevelProvince, p.Level())
	assert.Equal(t, provinces, p.Visible())

	// nothing selected at the province level yet
	assert.False(t, p.Forward())
	assert.False(t, New().Back())
}

func TestPicker_DropsStaleResponses(t *testing.T) {
	p := New()
	fetch(t, p, p.Start())

	slow := pick(t, p, "Region I")
	require.True(t, p.Back())
	fast := pick(t, p, "NCR")

	require.Equal(t, slow.Level, fast.Level)
	assert.Greater(t, fast.Token, slow.Token)

	assert.True(t, p.Deliver(Fetch(context.Background(), geo.Default(), *fast)))
	ncr := p.Visible()

	assert.False(t, p.Deliver(Fetch(context.Background(), geo.Default(), *slow)), "stale response must be dropped")
	assert.Equal(t, ncr, p.Visible())
	for _, area := range p.Visible() {
		assert.NotEqual(t, "Pangasinan", area.Name)
	}
}

func TestPicker_DropsResponsesForClearedLevels(t *testing.T) {
	p := New()
	fetch(t, p, p.Start())
	fetch(t, p, *pick(t, p, "Region I"))
	cities := pick(t, p, "Pangasinan")

	require.True(t, p.Back())
	pick(t, p, "La Union")

	// the Pangasinan city list arrives after the province changed
	assert.False(t, p.Deliver(Response{Request: *cities, Options: []geo.Area{{Code: "015518", Name: "Dagupan City"}}}))
}

func TestPicker_Filter(t *testing.T) {
	p := New()
	fetch(t, p, p.Start())

	p.SetFilter("  region i")
	names := map[string]bool{}
	for _, area := range p.Visible() {
		names[area.Name] = true
	}
	assert.True(t, names["Region I"])
	assert.True(t, names["Region IV-A"])
	assert.False(t, names["NCR"])

	p.SetFilter("")
	all := len(p.Visible())

	p.SetFilter("NCR")
	req := pick(t, p, "NCR")
	assert.Empty(t, p.Filter(), "filter does not carry into the next level")

	fetch(t, p, *req)
	require.True(t, p.Back())
	assert.Len(t, p.Visible(), all)
}

func TestPicker_SelectGuards(t *testing.T) {
	p := New()
	req := p.Start()

	_, err := p.Select("01")
	assert.ErrorIs(t, err, ErrNotLoaded)

	fetch(t, p, req)
	_, err = p.Select("99")
	assert.ErrorIs(t, err, ErrUnknownOption)
}

type failingSource struct{ err error }

func (f failingSource) Options(context.Context, geo.Level, string) ([]geo.Area, error) {
	return nil, f.err
}

func TestPicker_FetchErrorAndRetry(t *testing.T) {
	p := New()
	boom := errors.New("connection refused")

	req := p.Start()
	require.True(t, p.Deliver(Fetch(context.Background(), failingSource{err: boom}, req)))
	assert.ErrorIs(t, p.Err(), boom)
	assert.False(t, p.Loading())
	assert.Empty(t, p.Visible())

	retry := p.Retry()
	assert.Greater(t, retry.Token, req.Token)
	assert.True(t, p.Loading())

	fetch(t, p, retry)
	assert.NoError(t, p.Err())
	assert.NotEmpty(t, p.Visible())
}
