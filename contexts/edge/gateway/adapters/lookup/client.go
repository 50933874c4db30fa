package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domainerrors "kanvas/contexts/edge/gateway/domain/errors"
)

const lookupPath = "/api/v1/boards/roles/lookup"

// Client asks board-service for the caller's board role. It never retries.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c Client) LookupBoardRole(ctx context.Context, principal int64, boardID int64) (string, error) {
	query := url.Values{}
	query.Set("principal", strconv.FormatInt(principal, 10))
	query.Set("container", strconv.FormatInt(boardID, 10))
	endpoint := strings.TrimRight(c.BaseURL, "/") + lookupPath + "?" + query.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrLookupFailed, err)
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	response, err := client.Do(request)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domainerrors.ErrLookupTimeout
		}
		return "", fmt.Errorf("%w: %v", domainerrors.ErrLookupFailed, err)
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusNotFound:
		return "", domainerrors.ErrRoleDenied
	default:
		return "", fmt.Errorf("%w: board-service answered %d", domainerrors.ErrLookupFailed, response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, 64))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domainerrors.ErrLookupTimeout
		}
		return "", fmt.Errorf("%w: %v", domainerrors.ErrLookupFailed, err)
	}
	return strings.Trim(strings.TrimSpace(string(body)), `"`), nil
}
