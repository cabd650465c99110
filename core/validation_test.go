package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-lending-engine/core"
)

func Test_ValidateEmail(t *testing.T) {
	testCases := []struct {
		name  string
		email string
		valid bool
	}{
		{name: "plain address", email: "ana.garcia@email.com", valid: true},
		{name: "subdomain", email: "carlos@mail.example.org", valid: true},
		{name: "plus tag", email: "maria+library@email.es", valid: true},
		{name: "missing at", email: "ana.garcia.email.com", valid: false},
		{name: "missing local part", email: "@email.com", valid: false},
		{name: "missing tld", email: "ana@email", valid: false},
		{name: "empty tld", email: "ana@email.", valid: false},
		{name: "empty domain label", email: "ana@.com", valid: false},
		{name: "display name form", email: "Ana <ana@email.com>", valid: false},
		{name: "empty", email: "", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := core.ValidateEmail(tc.email)

			if tc.valid {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, core.ErrInvalidEmail)
			assert.Equal(t, core.KindInvalidArgument, core.KindOf(err))
		})
	}
}

func Test_NewBook_Validate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	valid := core.NewBook{ISBN: "978-1", Title: "1984", Author: "George Orwell", Year: 1949, Copies: 2}

	testCases := []struct {
		name         string
		mutate       func(b *core.NewBook)
		expectedCode core.ErrorCode
	}{
		{name: "valid", mutate: func(_ *core.NewBook) {}, expectedCode: ""},
		{name: "zero copies", mutate: func(b *core.NewBook) { b.Copies = 0 }, expectedCode: core.CodeInvalidCopies},
		{name: "negative copies", mutate: func(b *core.NewBook) { b.Copies = -3 }, expectedCode: core.CodeInvalidCopies},
		{name: "year too old", mutate: func(b *core.NewBook) { b.Year = 999 }, expectedCode: core.CodeInvalidYear},
		{name: "year next year allowed", mutate: func(b *core.NewBook) { b.Year = 2026 }, expectedCode: ""},
		{name: "year in the far future", mutate: func(b *core.NewBook) { b.Year = 2027 }, expectedCode: core.CodeInvalidYear},
		{name: "empty isbn", mutate: func(b *core.NewBook) { b.ISBN = "" }, expectedCode: core.CodeInvalidField},
		{name: "empty title", mutate: func(b *core.NewBook) { b.Title = "" }, expectedCode: core.CodeInvalidField},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			book := valid
			tc.mutate(&book)

			err := book.Validate(now)

			assert.Equal(t, tc.expectedCode, core.CodeOf(err))
			if tc.expectedCode == "" {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_NewUser_Validate(t *testing.T) {
	assert.NoError(t, core.NewUser{UserID: "U001", Name: "Ana García", Email: "ana.garcia@email.com"}.Validate())
	assert.ErrorIs(t, core.NewUser{UserID: "", Name: "Ana", Email: "ana@email.com"}.Validate(), core.ErrInvalidField)
	assert.ErrorIs(t, core.NewUser{UserID: "U001", Name: "Ana", Email: "nope"}.Validate(), core.ErrInvalidEmail)
}

func Test_ToOccurredAt_Normalizes_To_UTC_Microseconds(t *testing.T) {
	local := time.Date(2025, 3, 4, 10, 11, 12, 123456789, time.FixedZone("CET", 3600))

	got := core.ToOccurredAt(local)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123456000, got.Nanosecond())
	assert.True(t, got.Equal(local.Truncate(time.Microsecond)))
}
