// Package content is the read-only client for the Quran content API
// (api.alquran.cloud): surah metadata, per-surah text with
// translations, reciter editions, and per-ayah audio URLs.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"quranstudy/internal/logging"
)

// DefaultBaseURL is the public content API endpoint.
const DefaultBaseURL = "https://api.alquran.cloud"

// Editions requested for reading: arabic text plus the two translations
// the original app displayed.
const readerEditions = "quran-uthmani,en.sahih,ur.jalandhry"

// SurahRef is one entry of the surah metadata list.
type SurahRef struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	EnglishName   string `json:"englishName"`
	NumberOfAyahs int    `json:"numberOfAyahs"`
}

// Edition identifies a text or audio edition (translation or reciter).
type Edition struct {
	Identifier  string `json:"identifier"`
	Language    string `json:"language"`
	Name        string `json:"name"`
	EnglishName string `json:"englishName"`
	Format      string `json:"format"`
	Type        string `json:"type"`
}

// Ayah is one verse of one edition.
type Ayah struct {
	Number        int    `json:"number"`
	Text          string `json:"text"`
	NumberInSurah int    `json:"numberInSurah"`
}

// SurahEdition is a surah rendered in a single edition.
type SurahEdition struct {
	Number      int     `json:"number"`
	Name        string  `json:"name"`
	EnglishName string  `json:"englishName"`
	Ayahs       []Ayah  `json:"ayahs"`
	Edition     Edition `json:"edition"`
}

// Surah bundles the arabic text with its parallel translations.
type Surah struct {
	Number       int
	Name         string
	EnglishName  string
	AyahCount    int
	Arabic       SurahEdition
	Translations []SurahEdition
}

type Client struct {
	base string
	hc   *http.Client
	log  logging.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: baseURL,
		hc:   &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Meta returns the 114 surah references.
func (c *Client) Meta(ctx context.Context) ([]SurahRef, error) {
	var data struct {
		Surahs struct {
			References []SurahRef `json:"references"`
		} `json:"surahs"`
	}
	if err := c.getJSON(ctx, "/v1/meta", &data); err != nil {
		return nil, err
	}
	if len(data.Surahs.References) == 0 {
		return nil, fmt.Errorf("meta response has no surah references")
	}
	return data.Surahs.References, nil
}

// FetchSurah returns the arabic text and translations of one surah.
func (c *Client) FetchSurah(ctx context.Context, number int) (*Surah, error) {
	if number < 1 || number > 114 {
		return nil, fmt.Errorf("surah number %d out of range [1,114]", number)
	}

	var editions []SurahEdition
	path := fmt.Sprintf("/v1/surah/%d/editions/%s", number, readerEditions)
	if err := c.getJSON(ctx, path, &editions); err != nil {
		return nil, err
	}
	if len(editions) == 0 {
		return nil, fmt.Errorf("surah %d: empty editions response", number)
	}

	arabic := editions[0]
	return &Surah{
		Number:       arabic.Number,
		Name:         arabic.Name,
		EnglishName:  arabic.EnglishName,
		AyahCount:    len(arabic.Ayahs),
		Arabic:       arabic,
		Translations: editions[1:],
	}, nil
}

// Editions lists the available audio editions (reciters).
func (c *Client) Editions(ctx context.Context) ([]Edition, error) {
	var editions []Edition
	if err := c.getJSON(ctx, "/v1/edition?format=audio", &editions); err != nil {
		return nil, err
	}
	return editions, nil
}

// AyahAudioURL returns the audio URL of one ayah (by global ayah
// number) for the given reciter.
func (c *Client) AyahAudioURL(ctx context.Context, ayahNumber int, reciter string) (string, error) {
	if ayahNumber < 1 {
		return "", fmt.Errorf("ayah number %d out of range", ayahNumber)
	}
	if reciter == "" {
		return "", fmt.Errorf("reciter identifier is empty")
	}

	var data struct {
		Audio string `json:"audio"`
	}
	path := fmt.Sprintf("/v1/ayah/%d/%s", ayahNumber, reciter)
	if err := c.getJSON(ctx, path, &data); err != nil {
		return "", err
	}
	if data.Audio == "" {
		return "", fmt.Errorf("ayah %d has no audio for %s", ayahNumber, reciter)
	}
	return data.Audio, nil
}

// envelope is the common response wrapper of the content API.
type envelope struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// getJSON fetches path and decodes the envelope's data field into out.
// Server-side and transport failures are retried with exponential
// backoff; client errors (bad surah number upstream, etc.) are not.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
		if err != nil {
			return err
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			c.log.Warn(ctx, "content request failed, retrying", "path", path, "error", err)
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			c.log.Warn(ctx, "content API error, retrying", "path", path, "status", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("content API returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("content API returned status %d", resp.StatusCode)
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("decoding content response: %w", err)
		}
		if env.Code != http.StatusOK {
			return fmt.Errorf("content API code %d (%s)", env.Code, env.Status)
		}
		return json.Unmarshal(env.Data, out)
	})
}
