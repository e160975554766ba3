package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/goliatone/go-enlist/pkg/command"
	"github.com/goliatone/go-enlist/pkg/form"
	"github.com/goliatone/go-enlist/pkg/refdata"
)

// client talks to the inventory backend over HTTP. It implements both
// refdata.Store and form.Dispatcher.
type client struct {
	base string
	http *http.Client
}

var (
	_ refdata.Store   = (*client)(nil)
	_ form.Dispatcher = (*client)(nil)
)

func newClient(base string, httpClient *http.Client) (*client, error) {
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("enlist-cli: invalid api url %q: %w", base, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{base: base, http: httpClient}, nil
}

// Fetch retrieves one reference collection as a JSON array of records.
func (c *client) Fetch(ctx context.Context, collection string) ([]refdata.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+collection, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("enlist-cli: fetch %s: unexpected status %s", collection, resp.Status)
	}

	var records []refdata.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("enlist-cli: decode %s: %w", collection, err)
	}
	return records, nil
}

// Create posts the creation command. Application-level rejections become
// *form.SubmissionError carrying either the single message or the per-field
// mapping the backend answered with.
func (c *client) Create(ctx context.Context, cmd command.Creation) (command.EntityRef, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return command.EntityRef{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/machines", bytes.NewReader(payload))
	if err != nil {
		return command.EntityRef{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return command.EntityRef{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return command.EntityRef{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return command.EntityRef{}, &form.SubmissionError{Info: errorInfoFromBody(body, resp.Status)}
	}

	var ref command.EntityRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return command.EntityRef{}, fmt.Errorf("enlist-cli: decode creation response: %w", err)
	}
	return ref, nil
}

// errorInfoFromBody normalizes the backend's two rejection shapes: a JSON
// object of field → message, or {"message": "..."} / plain text.
func errorInfoFromBody(body []byte, status string) form.ErrorInfo {
	var fields map[string]string
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
		if message, ok := fields["message"]; ok && len(fields) == 1 {
			return form.ErrorInfo{Message: message}
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		info := form.ErrorInfo{}
		for _, name := range names {
			info.Fields = append(info.Fields, form.FieldMessage{Field: name, Message: fields[name]})
		}
		return info
	}
	if len(bytes.TrimSpace(body)) > 0 {
		return form.ErrorInfo{Message: string(bytes.TrimSpace(body))}
	}
	return form.ErrorInfo{Message: "unexpected status " + status}
}
