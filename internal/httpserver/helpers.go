package httpserver

import (
	"errors"
	"strconv"
)

var errBadID = errors.New("id must be a positive integer")

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return uint(id), nil
}
