package main

import (
	"context"
	"errors"
	"time"
)

// serves canned responses by url and counts requests.
type fake_downloader struct {
	responses map[string]ResponseWrapper
	calls     map[string]int

	// each download takes this long
	delay   time.Duration
	started []time.Time
	ended   []time.Time
}

func new_fake_downloader(responses map[string]ResponseWrapper) *fake_downloader {
	return &fake_downloader{responses: responses, calls: map[string]int{}}
}

func (f *fake_downloader) Download(ctx context.Context, url string) (ResponseWrapper, error) {
	f.calls[url] += 1
	f.started = append(f.started, time.Now())
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.ended = append(f.ended, time.Now())
	resp, present := f.responses[url]
	if !present {
		return ResponseWrapper{}, errors.New("connection refused")
	}
	return resp, nil
}

func (f *fake_downloader) total_calls() int {
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func ok(text string) ResponseWrapper {
	return ResponseWrapper{StatusCode: 200, Text: text}
}

func ptr[T any](v T) *T {
	return &v
}
