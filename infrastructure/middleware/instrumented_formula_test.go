package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-scout/internal/domain"
	"github.com/ahrav/go-scout/internal/ports"
)

// stubFormula implements ports.Formula for testing middleware functionality.
type stubFormula struct {
	name        string
	value       float64
	err         error
	validateErr error
}

func (s *stubFormula) Name() string { return s.name }

func (s *stubFormula) Evaluate(domain.EntityID) (float64, error) { return s.value, s.err }

func (s *stubFormula) Validate() error { return s.validateErr }

// stubScorer adds a display score on top of stubFormula.
type stubScorer struct {
	stubFormula
	score domain.Score
}

func (s *stubScorer) Score(domain.EntityID) (domain.Score, error) { return s.score, s.err }

type ctxKey struct{}

type observedCall struct {
	formula string
	entity  domain.EntityID
	value   float64
	err     error
	marker  any
}

// recordingObserver implements FormulaObserver for testing.
type recordingObserver struct {
	mu     sync.Mutex
	before int
	after  []observedCall
}

func (r *recordingObserver) BeforeEvaluate(ctx context.Context, _ string, _ domain.EntityID) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.before++
	return context.WithValue(ctx, ctxKey{}, "carried")
}

func (r *recordingObserver) AfterEvaluate(
	ctx context.Context,
	formula string,
	entity domain.EntityID,
	value float64,
	_ time.Duration,
	err error,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.after = append(r.after, observedCall{
		formula: formula,
		entity:  entity,
		value:   value,
		err:     err,
		marker:  ctx.Value(ctxKey{}),
	})
}

func TestNewInstrumentedFormula_PanicsWithNilFormula(t *testing.T) {
	assert.Panics(t, func() { NewInstrumentedFormula(nil, nil) })
}

func TestInstrumentedFormula_Evaluate(t *testing.T) {
	tests := []struct {
		name    string
		inner   *stubFormula
		want    float64
		wantErr error
	}{
		{
			name:  "successful evaluation",
			inner: &stubFormula{name: "driver", value: 4},
			want:  4,
		},
		{
			name:    "no data is passed through",
			inner:   &stubFormula{name: "driver", err: domain.ErrNoData},
			wantErr: domain.ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			f := NewInstrumentedFormula(tt.inner, obs)

			got, err := f.Evaluate(domain.TeamEntity(4099))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.Equal(t, 1, obs.before)
			require.Len(t, obs.after, 1)
			call := obs.after[0]
			assert.Equal(t, "driver", call.formula)
			assert.Equal(t, domain.TeamEntity(4099), call.entity)
			assert.Equal(t, tt.want, call.value)
			assert.Equal(t, tt.wantErr, call.err)
			assert.Equal(t, "carried", call.marker, "the context from BeforeEvaluate reaches AfterEvaluate")
		})
	}
}

func TestInstrumentedFormula_Score(t *testing.T) {
	t.Run("scorer", func(t *testing.T) {
		inner := &stubScorer{
			stubFormula: stubFormula{name: "overall"},
			score:       domain.Score{Raw: 80, Display: 80, Reference: 100},
		}
		obs := &recordingObserver{}
		f := NewInstrumentedFormula(inner, obs)

		score, err := f.Score(domain.TeamEntity(254))
		require.NoError(t, err)
		assert.Equal(t, inner.score, score)
		require.Len(t, obs.after, 1)
		assert.Equal(t, 80.0, obs.after[0].value)
	})

	t.Run("plain formula scores as raw value", func(t *testing.T) {
		f := NewInstrumentedFormula(&stubFormula{name: "driver", value: 3.5}, nil)

		score, err := f.Score(domain.TeamEntity(254))
		require.NoError(t, err)
		assert.Equal(t, domain.Score{Raw: 3.5, Display: 3.5}, score)
	})
}

func TestInstrumentedFormula_Delegation(t *testing.T) {
	boom := errors.New("boom")
	inner := &stubFormula{name: "driver", validateErr: boom}
	f := NewInstrumentedFormula(inner, nil)

	assert.Equal(t, "driver", f.Name())
	assert.ErrorIs(t, f.Validate(), boom)
	assert.Same(t, ports.Formula(inner), f.Unwrap())
}

func TestDecorator(t *testing.T) {
	obs := &recordingObserver{}
	decorate := Decorator(obs)

	wrapped := decorate(&stubFormula{name: "auto", value: 2})
	_, isScorer := wrapped.(ports.Scorer)
	assert.True(t, isScorer)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = wrapped.Evaluate(domain.TeamEntity(118))
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, obs.before)
	assert.Len(t, obs.after, 16)
}
