package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/billing-admin/internal/models"
)

func TestOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate time.Time
		want    bool
	}{
		{name: "31 days ago", dueDate: now.AddDate(0, 0, -31), want: true},
		{name: "29 days ago", dueDate: now.AddDate(0, 0, -29), want: false},
		{name: "exactly 30 days ago", dueDate: now.Add(-GracePeriod), want: false},
		{name: "30 days and a second ago", dueDate: now.Add(-GracePeriod - time.Second), want: true},
		{name: "due in the future", dueDate: now.AddDate(0, 1, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overdue(tt.dueDate, now, GracePeriod))
		})
	}
}

func TestRules_StateAndRefresh(t *testing.T) {
	rules := DefaultRules()
	now := time.Now()

	tests := []struct {
		name        string
		client      models.Client
		wantState   State
		wantChanged bool
	}{
		{
			name:      "active and recent due date",
			client:    models.Client{IsActive: true, DueDate: now.AddDate(0, 0, -29)},
			wantState: StateActive,
		},
		{
			name:        "active but past grace window",
			client:      models.Client{IsActive: true, DueDate: now.AddDate(0, 0, -31)},
			wantState:   StateExpired,
			wantChanged: true,
		},
		{
			name:      "stored as inactive",
			client:    models.Client{IsActive: false, DueDate: now.AddDate(0, 1, 0)},
			wantState: StateExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.client
			assert.Equal(t, tt.wantState, rules.State(&c, now))
			assert.Equal(t, tt.wantChanged, rules.Refresh(&c, now))
			assert.Equal(t, tt.wantState == StateActive, c.IsActive)
		})
	}
}

func TestRules_CustomGracePeriod(t *testing.T) {
	rules := DefaultRules()
	rules.GracePeriod = 24 * time.Hour
	now := time.Now()

	c := &models.Client{IsActive: true, DueDate: now.Add(-25 * time.Hour)}
	assert.Equal(t, StateExpired, rules.State(c, now))
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2024-07-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDueDate("  ")
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	_, err = ParseDueDate("01/07/2024")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRenew(t *testing.T) {
	t.Run("updates due date and cached string only", func(t *testing.T) {
		c := clientWithPayments(2)
		c.IsActive = true
		history := append([]models.PaymentEntry(nil), c.PaymentHistory...)

		require.NoError(t, Renew(c, "2024-08-05"))
		assert.Equal(t, time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC), c.DueDate)
		assert.Equal(t, "05/08/2024", c.DueDateString)
		assert.True(t, c.IsActive)
		assert.Equal(t, history, c.PaymentHistory)
	})

	t.Run("does not force expired client active", func(t *testing.T) {
		c := &models.Client{IsActive: false}
		require.NoError(t, Renew(c, "2030-01-01"))
		assert.False(t, c.IsActive)
	})

	t.Run("missing date", func(t *testing.T) {
		c := &models.Client{DueDateString: "01/01/2024"}
		assert.ErrorIs(t, Renew(c, ""), ErrMissingRequiredField)
		assert.Equal(t, "01/01/2024", c.DueDateString)
	})
}

func TestRules_Reactivate(t *testing.T) {
	rules := DefaultRules()
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		client    models.Client
		dueDate   string
		wantErr   error
		wantDue   string
		wantState State
	}{
		{
			name:      "expired by flag",
			client:    models.Client{ID: "c1", IsActive: false, DueDate: now.AddDate(0, -2, 0)},
			dueDate:   "2024-07-15",
			wantDue:   "15/07/2024",
			wantState: StateActive,
		},
		{
			name:      "expired by grace window",
			client:    models.Client{ID: "c1", IsActive: true, DueDate: now.AddDate(0, 0, -31)},
			dueDate:   "2024-07-15",
			wantDue:   "15/07/2024",
			wantState: StateActive,
		},
		{
			name:    "active client with a date",
			client:  models.Client{ID: "c1", IsActive: true, DueDate: now},
			dueDate: "2024-07-15",
			wantErr: ErrInvalidState,
		},
		{
			name:    "active client without a date still reports state",
			client:  models.Client{ID: "c1", IsActive: true, DueDate: now},
			dueDate: "",
			wantErr: ErrInvalidState,
		},
		{
			name:    "expired client without a date",
			client:  models.Client{ID: "c1", IsActive: false, DueDate: now},
			dueDate: "",
			wantErr: ErrMissingRequiredField,
		},
		{
			name:    "expired client with malformed date",
			client:  models.Client{ID: "c1", IsActive: false, DueDate: now},
			dueDate: "15-07-2024",
			wantErr: ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.client
			before := c

			err := rules.Reactivate(&c, tt.dueDate, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, c)
				return
			}
			require.NoError(t, err)
			assert.True(t, c.IsActive)
			assert.Equal(t, tt.wantDue, c.DueDateString)
			assert.Equal(t, tt.wantState, rules.State(&c, now))
		})
	}
}
