package transaction

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() Params {
	return Params{
		NGOID:      uuid.New(),
		UserID:     uuid.New(),
		Kind:       KindDonation,
		Amount:     25000,
		LedgerHash: "0xabc123",
	}
}

func TestNew(t *testing.T) {
	t.Run("donation", func(t *testing.T) {
		p := validParams()
		tx, err := New(p)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, tx.ID)
		assert.Equal(t, p.NGOID, tx.NGOID)
		assert.Equal(t, p.UserID, tx.UserID)
		assert.Equal(t, int64(25000), tx.Amount)
		assert.Equal(t, "0xabc123", tx.LedgerHash)
		assert.Equal(t, StatusCompleted, tx.Status)
		assert.False(t, tx.CreatedAt.IsZero())
	})

	t.Run("expense carries proof", func(t *testing.T) {
		p := validParams()
		p.Kind = KindExpense
		p.ProofURL = "https://example.com/receipt.pdf"

		tx, err := New(p)
		require.NoError(t, err)
		assert.Equal(t, KindExpense, tx.Kind)
		assert.Equal(t, "https://example.com/receipt.pdf", tx.ProofURL)
	})

	t.Run("every completed record has a ledger hash", func(t *testing.T) {
		p := validParams()
		p.LedgerHash = ""

		tx, err := New(p)
		assert.ErrorIs(t, err, ErrMissingLedgerHash)
		assert.Nil(t, tx)
	})

	t.Run("proof on a donation rejected", func(t *testing.T) {
		p := validParams()
		p.ProofURL = "https://example.com/receipt.pdf"

		_, err := New(p)
		assert.ErrorIs(t, err, ErrProofOnDonation)
	})

	t.Run("validation errors", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*Params)
			want   error
		}{
			{"missing ngo", func(p *Params) { p.NGOID = uuid.Nil }, ErrMissingNGO},
			{"missing user", func(p *Params) { p.UserID = uuid.Nil }, ErrMissingUser},
			{"unknown kind", func(p *Params) { p.Kind = "transfer" }, ErrInvalidKind},
			{"zero amount", func(p *Params) { p.Amount = 0 }, ErrInvalidAmount},
			{"negative amount", func(p *Params) { p.Amount = -100 }, ErrInvalidAmount},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				p := validParams()
				tc.mutate(&p)
				_, err := New(p)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindDonation.Valid())
	assert.True(t, KindExpense.Valid())
	assert.False(t, Kind("").Valid())
	assert.False(t, Kind("transfer").Valid())
}

func TestErrNotFoundIs(t *testing.T) {
	id := uuid.New()
	err := ErrNotFound{ID: id}

	assert.ErrorIs(t, err, ErrNotFound{})
	assert.ErrorIs(t, err, ErrNotFound{ID: id})
	assert.NotErrorIs(t, err, ErrNotFound{ID: uuid.New()})
}
