package supabase

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterEncode(t *testing.T) {
	require.Equal(t, "eq.5", Eq("id", 5).encode())
	require.Equal(t, "eq.Furniture", Eq("name", "Furniture").encode())
	require.Equal(t, "neq.archived", Neq("status", "archived").encode())
	require.Equal(t, "gt.100", Gt("price_ksh", 100).encode())
	require.Equal(t, "gte.100", Gte("price_ksh", 100).encode())
	require.Equal(t, "lt.100", Lt("price_ksh", 100).encode())
	require.Equal(t, "lte.100", Lte("price_ksh", 100).encode())
	require.Equal(t, "like.Oak*", Like("name", "Oak*").encode())
	require.Equal(t, "ilike.oak*", ILike("name", "oak*").encode())
	require.Equal(t, "is.null", Is("description", "null").encode())
	require.Equal(t, "in.(1,2,3)", In("id", 1, 2, 3).encode())
}

func TestApplyFilters(t *testing.T) {
	params := url.Values{}
	applyFilters(params, []Filter{
		Eq("id", "abc"),
		Gt("stock", 0),
	})

	require.Equal(t, "eq.abc", params.Get("id"))
	require.Equal(t, "gt.0", params.Get("stock"))
}
