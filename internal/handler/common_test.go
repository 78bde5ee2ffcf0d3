package handler

import (
    "testing"

    "github.com/stretchr/testify/require"
)

func TestIndexToRowLabel(t *testing.T) {
    cases := []struct {
        in   int
        want string
    }{
        {0, "A"},
        {1, "B"},
        {25, "Z"},
        {26, "AA"},
        {27, "AB"},
        {51, "AZ"},
        {52, "BA"},
        {701, "ZZ"},
        {702, "AAA"},
        {-1, ""},
    }
    for _, tc := range cases {
        require.Equal(t, tc.want, indexToRowLabel(tc.in), "index %d", tc.in)
    }
}
