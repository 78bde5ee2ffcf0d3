package handler // handler defines http handlers

import (
    "strconv" // strconv converts URL parameters to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types
)

// pathID parses a positive numeric path parameter.  The boolean is false
// for anything that is not a positive integer.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// indexToRowLabel converts a zero-based index to an alphabetical row label like A, B, AA
func indexToRowLabel(i int) string { // begin function to compute row label
    if i < 0 { // negative indices are invalid
        return "" // return empty string for invalid index
    }
    res := []rune{} // accumulate runes for the label
    for { // loop until all digits consumed
        rem := i % 26                    // compute remainder in base 26
        res = append(res, rune('A'+rem)) // append current letter
        i = i/26 - 1                     // reduce i for next digit
        if i < 0 { // break when no more digits
            break // exit loop
        }
    } // end for
    for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 { // reverse the runes to build the label
        res[j], res[k] = res[k], res[j] // swap positions
    }
    return string(res) // convert rune slice to string
}
