package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/common"
)

const (
	profilesTable = "profiles"
	entriesTable  = "journal_entries"
)

// FetchProfile selects the profile row by user id.
func (c *HTTPClient) FetchProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var rows []profileRow
	query := "id=eq." + url.QueryEscape(userID) + "&select=*&limit=1"
	if err := c.restDo(ctx, http.MethodGet, profilesTable, query, "", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrNotFound
	}
	return rows[0].toModel(), nil
}

// InsertProfile creates the initial profile row after signup.
func (c *HTTPClient) InsertProfile(ctx context.Context, p *models.UserProfile) error {
	row := profileRowFromModel(p)
	return c.restDo(ctx, http.MethodPost, profilesTable, "", "return=minimal", row, nil)
}

// UpdateProfile applies a partial update, stamping updated_at, and returns
// the row as the table store now holds it.
func (c *HTTPClient) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.UserProfile, error) {
	row := patchRowFromPatch(patch, c.now().UTC())

	var rows []profileRow
	query := "id=eq." + url.QueryEscape(userID)
	if err := c.restDo(ctx, http.MethodPatch, profilesTable, query, "return=representation", row, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrNotFound
	}
	return rows[0].toModel(), nil
}

// UpsertEntry inserts or replaces the remote entry row keyed by id.
func (c *HTTPClient) UpsertEntry(ctx context.Context, e *models.JournalEntry) error {
	row := entryRowFromModel(e)
	return c.restDo(ctx, http.MethodPost, entriesTable, "",
		"resolution=merge-duplicates,return=minimal", row, nil)
}

// DeleteEntry removes the remote row; absent rows delete to the same state.
func (c *HTTPClient) DeleteEntry(ctx context.Context, id string) error {
	query := "id=eq." + url.QueryEscape(id)
	return c.restDo(ctx, http.MethodDelete, entriesTable, query, "", nil, nil)
}

// restDo issues one table-store request with the session bearer. On a 401 it
// refreshes the token pair once and retries, mirroring the usual
// interceptor-style token renewal.
func (c *HTTPClient) restDo(ctx context.Context, method, table, query, prefer string, body, out any) error {
	session := c.Session()
	if session == nil {
		return common.ErrUnauthenticated
	}

	status, _, err := c.tableRequest(ctx, method, table, query, prefer, session.AccessToken, body, out)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && session.RefreshToken != "" {
		refreshed, rerr := c.RefreshSession(ctx)
		if rerr != nil {
			if errors.Is(rerr, ErrInvalidCredentials) {
				return common.ErrUnauthenticated
			}
			return rerr
		}
		status, _, err = c.tableRequest(ctx, method, table, query, prefer, refreshed.AccessToken, body, out)
		if err != nil {
			return err
		}
	}

	switch {
	case status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return common.ErrUnauthenticated
	case status == http.StatusNotFound:
		return common.ErrNotFound
	default:
		return fmt.Errorf("%w: table %s status %d", ErrTransport, table, status)
	}
}

func (c *HTTPClient) tableRequest(ctx context.Context, method, table, query, prefer, token string, body, out any) (int, []byte, error) {
	u := c.baseURL + restBasePath + "/" + table
	if query != "" {
		u += "?" + query
	}
	headers := bearer(token)
	if prefer != "" {
		headers["Prefer"] = prefer
	}
	return c.doJSON(ctx, method, u, headers, body, out)
}
