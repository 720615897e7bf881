package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kunhe0330/macolor-claude/palette"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

const (
	// FeatureImageProperties is the annotation type carrying dominant colors.
	FeatureImageProperties = "IMAGE_PROPERTIES"
	// MaxCandidates is how many dominant colors are requested from the provider.
	MaxCandidates = 10

	unknownError = "Unknown error"
)

var (
	// ErrNoAPIKey is returned when the client was built without an API key.
	ErrNoAPIKey = errors.New("vision: API key not configured")
	// ErrMalformedResponse is returned when a successful reply lacks the dominant colors annotation.
	ErrMalformedResponse = errors.New("vision: malformed response")
)

// UpstreamError reports a non-2xx reply from the vision provider.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("vision: provider returned status %d: %s", e.StatusCode, e.Message)
}

// Client represents a client to the Cloud Vision images:annotate API.
type Client struct {
	service *vision.Service
	apiKey  string
	timeout time.Duration
}

// NewBackendClient creates a Client for the given endpoint. An empty apiKey
// yields a client whose calls fail with ErrNoAPIKey.
func NewBackendClient(ctx context.Context, apiKey, endpoint string, timeout time.Duration) (*Client, error) {
	c := &Client{apiKey: apiKey, timeout: timeout}
	if apiKey == "" {
		return c, nil
	}

	service, err := vision.NewService(ctx,
		option.WithAPIKey(apiKey),
		option.WithEndpoint(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("vision: creating service: %w", err)
	}
	c.service = service
	return c, nil
}

// DominantColors sends the base64 image to the provider and returns its
// dominant color candidates in the order the provider listed them.
func (c *Client) DominantColors(ctx context.Context, imageBase64 string) ([]palette.Candidate, error) {
	if c.service == nil {
		return nil, ErrNoAPIKey
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: imageBase64},
			Features: []*vision.Feature{{
				Type:       FeatureImageProperties,
				MaxResults: MaxCandidates,
			}},
		}},
	}

	// The key travels as a query parameter whichever transport the library picks.
	resp, err := c.service.Images.Annotate(req).Context(ctx).Do(googleapi.QueryParameter("key", c.apiKey))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			log.WithField("status", gerr.Code).Debugf("Vision API error body: %s", gerr.Body)
			return nil, &UpstreamError{StatusCode: gerr.Code, Message: errorMessage(gerr)}
		}
		return nil, fmt.Errorf("vision: request failed: %w", err)
	}

	return candidates(resp)
}

func candidates(resp *vision.BatchAnnotateImagesResponse) ([]palette.Candidate, error) {
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, fmt.Errorf("%w: no annotation results", ErrMalformedResponse)
	}
	result := resp.Responses[0]
	if result.Error != nil && result.Error.Message != "" {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, result.Error.Message)
	}
	if result.ImagePropertiesAnnotation == nil || result.ImagePropertiesAnnotation.DominantColors == nil {
		return nil, fmt.Errorf("%w: missing dominant colors", ErrMalformedResponse)
	}

	colors := result.ImagePropertiesAnnotation.DominantColors.Colors
	out := make([]palette.Candidate, 0, len(colors))
	for _, info := range colors {
		if info == nil {
			continue
		}
		cand := palette.Candidate{Score: info.Score}
		if info.Color != nil {
			cand.Red = info.Color.Red
			cand.Green = info.Color.Green
			cand.Blue = info.Color.Blue
		}
		out = append(out, cand)
	}
	return out, nil
}

// errorMessage picks the provider's error message, falling back when the
// error envelope was missing or could not be parsed.
func errorMessage(gerr *googleapi.Error) string {
	if gerr.Message != "" {
		return gerr.Message
	}
	return unknownError
}
