package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
)

// DefaultPage is used when the page parameter is absent.
const DefaultPage = 1

// ParsePage parses the page query parameter.
// An empty value yields DefaultPage. Anything that is not an integer of at
// least 1 is rejected with apperrors.ErrInvalidPage.
func ParsePage(pageParam string) (int, error) {
	pageParam = strings.TrimSpace(pageParam)
	if pageParam == "" {
		return DefaultPage, nil
	}

	page, err := strconv.Atoi(pageParam)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", apperrors.ErrInvalidPage, pageParam)
	}
	if page < 1 {
		return 0, fmt.Errorf("%w: %d", apperrors.ErrInvalidPage, page)
	}
	return page, nil
}
