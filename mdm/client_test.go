package mdm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/assetflow/assetflow_backend/utils"
)

func TestListDevices(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"devices":[{"serial_number":"SN-1","user_name":"Jane Roe"},{"serial_number":"SN-2","user_name":"John Poe"}]}`))
	}))
	defer server.Close()

	client := NewClientWith(server.URL, "secret-token", server.Client())
	devices, err := client.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(devices) != 2 || devices[0].SerialNumber != "SN-1" || devices[1].UserName != "John Poe" {
		t.Errorf("unexpected devices: %+v", devices)
	}
}

func TestListDevicesBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"serial_number":"SN-1","user_name":"Jane Roe"}]`))
	}))
	defer server.Close()

	client := NewClientWith(server.URL, "t", server.Client())
	devices, err := client.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 1 {
		t.Errorf("got %d devices, want 1", len(devices))
	}
}

func TestListDevicesRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"devices":[]}`))
	}))
	defer server.Close()

	client := NewClientWith(server.URL, "t", server.Client())
	if _, err := client.ListDevices(context.Background()); err != nil {
		t.Fatalf("ListDevices after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestListDevicesGivesUpAfterThreeAttempts(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClientWith(server.URL, "t", server.Client())
	_, err := client.ListDevices(context.Background())
	if !errors.Is(err, utils.ErrorExternalError) {
		t.Fatalf("err = %v, want external-error", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestListDevicesUnauthorizedNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClientWith(server.URL, "bad", server.Client())
	_, err := client.ListDevices(context.Background())
	if !errors.Is(err, utils.ErrorExternalError) {
		t.Fatalf("err = %v, want external-error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (4xx must not be retried)", attempts)
	}
}

func TestListDevicesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"devices":[]}`))
	}))
	defer server.Close()

	httpClient := &http.Client{Timeout: 20 * time.Millisecond}
	client := NewClientWith(server.URL, "t", httpClient)
	client.maxRetries = 1

	_, err := client.ListDevices(context.Background())
	if !errors.Is(err, utils.ErrorExternalTimeout) {
		t.Fatalf("err = %v, want external-timeout", err)
	}
}
