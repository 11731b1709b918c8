// Package client is the admin action client: it builds the multipart
// requests the admin endpoints expect, validates input before anything goes
// on the wire, and maps the {ok, error} envelope to errors the operator can
// read. Every failure here is reportable and non-fatal.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"naikenten/internal/space"
)

// ErrValidation marks input rejected before any request was sent.
var ErrValidation = errors.New("invalid input")

// APIError is a server-reported failure (ok:false), surfaced verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// File is one image attachment.
type File struct {
	Name string
	Data []byte
}

type Client struct {
	BaseURL string
	Token   string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Token: token}
}

type MarkResult struct {
	MarkedIDs             []int    `json:"marked"`
	Errors                []string `json:"errors"`
	InstructionImageCount int      `json:"instruction_images"`
}

// MarkTaken marks one or more spaces taken with optional instruction
// material. Blank takenBy or an empty id list fails client-side with no
// request.
func (c *Client) MarkTaken(ctx context.Context, ids []int, takenBy, note, instructionText string, instructionImages []File) (*MarkResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: space ids required", ErrValidation)
	}
	if strings.TrimSpace(takenBy) == "" {
		return nil, fmt.Errorf("%w: taken by required", ErrValidation)
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.Itoa(id)
	}
	fields := map[string]string{
		"space_ids": strings.Join(idStrs, ","),
		"taken_by":  takenBy,
	}
	if note != "" {
		fields["taken_note"] = note
	}
	if instructionText != "" {
		fields["instruction_text"] = instructionText
	}

	var out MarkResult
	if err := c.postForm(ctx, "/mark_multiple", fields, "instruction_files", instructionImages, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type PublishResult struct {
	ImageCount int `json:"images"`
}

// PublishUpdate attaches a new update with images to a space. A blank id or
// author, or zero images, fails client-side with no request.
func (c *Client) PublishUpdate(ctx context.Context, spaceID int, author, text string, images []File) (*PublishResult, error) {
	if spaceID <= 0 {
		return nil, fmt.Errorf("%w: space id required", ErrValidation)
	}
	if strings.TrimSpace(author) == "" {
		return nil, fmt.Errorf("%w: author required", ErrValidation)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: at least one image required", ErrValidation)
	}

	fields := map[string]string{
		"space_id": strconv.Itoa(spaceID),
		"author":   author,
	}
	if text != "" {
		fields["update_text"] = text
	}

	var out PublishResult
	if err := c.postForm(ctx, "/publish_update", fields, "update_files", images, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type MarkPreview struct {
	Old  *space.ImageRef `json:"old"`
	New  *space.ImageRef `json:"new"`
	Note string          `json:"note"`
}

// PreviewMark requests the first half of the two-phase mark flow: the server
// describes the image swap without committing anything. The caller shows the
// preview and only calls ConfirmMark on explicit confirmation; cancelling
// sends nothing further.
func (c *Client) PreviewMark(ctx context.Context, id int, note string, image *File) (*MarkPreview, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: space id required", ErrValidation)
	}

	fields := map[string]string{"mark_id": strconv.Itoa(id)}
	if note != "" {
		fields["taken_note"] = note
	}
	var files []File
	if image != nil {
		files = append(files, *image)
	}

	var out MarkPreview
	if err := c.postForm(ctx, "/mark_preview", fields, "taken_file", files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ConfirmResult struct {
	ID        int  `json:"id"`
	Published bool `json:"published"`
}

// ConfirmMark commits a previously previewed mark.
func (c *Client) ConfirmMark(ctx context.Context, id int, takenBy, note string, image *File, publish bool) (*ConfirmResult, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: space id required", ErrValidation)
	}
	if strings.TrimSpace(takenBy) == "" {
		return nil, fmt.Errorf("%w: taken by required", ErrValidation)
	}

	fields := map[string]string{
		"mark_id":  strconv.Itoa(id),
		"taken_by": takenBy,
	}
	if note != "" {
		fields["taken_note"] = note
	}
	if publish {
		fields["mark_publish"] = "1"
	}
	var files []File
	if image != nil {
		files = append(files, *image)
	}

	var out ConfirmResult
	if err := c.postForm(ctx, "/mark", fields, "taken_file", files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RevertResult struct {
	ID         int    `json:"id"`
	RevertedAt string `json:"reverted"`
}

// RevertLast undoes the most recent committed update of one space.
func (c *Client) RevertLast(ctx context.Context, id int) (*RevertResult, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: space id required", ErrValidation)
	}

	var out RevertResult
	if err := c.postForm(ctx, "/revert", map[string]string{"revert_id": strconv.Itoa(id)}, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postForm(ctx context.Context, path string, fields map[string]string, fileField string, files []File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(fileField, f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Data); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("network failure: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("network failure: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &APIError{Message: "unauthorized"}
	}

	var env struct {
		Ok    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("bad response: %w", err)
	}
	if !env.Ok {
		msg := env.Error
		if msg == "" {
			msg = "unknown error"
		}
		return &APIError{Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("bad response: %w", err)
		}
	}
	return nil
}
