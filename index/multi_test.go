package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-engine/index"
)

type pair struct {
	key     string
	primary string
}

func collectPairs(seq func(yield func(string, string) bool)) []pair {
	got := make([]pair, 0)
	for k, p := range seq {
		got = append(got, pair{k, p})
	}

	return got
}

func Test_Multi_Tolerates_Duplicate_Secondary_Keys(t *testing.T) {
	// arrange
	m := index.NewMulti[string, string]()

	// act
	require.NoError(t, m.Add("george orwell", "978-0-452-28423-4"))
	require.NoError(t, m.Add("george orwell", "978-0-14-118776-1"))

	// assert
	assert.Equal(t, []string{"978-0-14-118776-1", "978-0-452-28423-4"}, m.Get("george orwell"))
	assert.Equal(t, 2, m.Len())
}

func Test_Multi_Add_Fails_For_Existing_Pair(t *testing.T) {
	m := index.NewMulti[string, string]()
	require.NoError(t, m.Add("1984", "978-1"))

	err := m.Add("1984", "978-1")

	assert.ErrorIs(t, err, index.ErrDuplicateKey)
	assert.Equal(t, 1, m.Len())
}

func Test_Multi_Remove(t *testing.T) {
	// arrange
	m := index.NewMulti[string, string]()
	require.NoError(t, m.Add("harper lee", "978-1"))
	require.NoError(t, m.Add("harper lee", "978-2"))

	// act
	require.NoError(t, m.Remove("harper lee", "978-1"))
	errMissingPair := m.Remove("harper lee", "978-1")
	errMissingKey := m.Remove("nobody", "978-1")

	// assert
	assert.ErrorIs(t, errMissingPair, index.ErrKeyNotFound)
	assert.ErrorIs(t, errMissingKey, index.ErrKeyNotFound)
	assert.Equal(t, []string{"978-2"}, m.Get("harper lee"))
	assert.True(t, m.Contains("harper lee", "978-2"))
	assert.False(t, m.Contains("harper lee", "978-1"))
}

func Test_Multi_Remove_Last_Primary_Drops_Secondary_Key(t *testing.T) {
	m := index.NewMulti[string, string]()
	require.NoError(t, m.Add("x", "1"))

	require.NoError(t, m.Remove("x", "1"))

	assert.Nil(t, m.Get("x"))
	assert.Empty(t, collectPairs(m.All()))
}

func Test_MultiPrefix_Orders_By_Secondary_Then_Primary(t *testing.T) {
	// arrange
	m := index.NewMulti[string, string]()
	require.NoError(t, m.Add("el gran gatsby", "978-3"))
	require.NoError(t, m.Add("el código da vinci", "978-2"))
	require.NoError(t, m.Add("el código da vinci", "978-1"))
	require.NoError(t, m.Add("1984", "978-4"))

	// act
	got := collectPairs(index.MultiPrefix(m, "el "))

	// assert
	assert.Equal(t, []pair{
		{"el código da vinci", "978-1"},
		{"el código da vinci", "978-2"},
		{"el gran gatsby", "978-3"},
	}, got)
}

func Test_MultiContains_Scans_For_Substring(t *testing.T) {
	m := index.NewMulti[string, string]()
	require.NoError(t, m.Add("cien años de soledad", "978-1"))
	require.NoError(t, m.Add("matar a un ruiseñor", "978-2"))

	got := collectPairs(index.MultiContains(m, "soledad"))

	assert.Equal(t, []pair{{"cien años de soledad", "978-1"}}, got)
}

func Test_Multi_Range(t *testing.T) {
	m := index.NewMulti[string, string]()
	require.NoError(t, m.Add("a", "1"))
	require.NoError(t, m.Add("b", "2"))
	require.NoError(t, m.Add("c", "3"))

	got := collectPairs(m.Range(index.Including("b"), index.Unbounded[string]()))

	assert.Equal(t, []pair{{"b", "2"}, {"c", "3"}}, got)
}
