//go:build container
// +build container

package queue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/valkey-io/valkey-go"
)

func startValkey(t *testing.T) valkey.Client {
	t.Helper()
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "valkey/valkey:8-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{endpoint}})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestValkeyQueueDeliversJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := startValkey(t)

	delivered := make(chan string, 1)
	q := NewValkeyQueue(client, ValkeyOptions{Key: "test:jobs", Workers: 2}, func(_ context.Context, name string, payload []byte) error {
		delivered <- name + ":" + string(payload)
		return nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	q.Start(ctx)

	require.NoError(t, q.Enqueue(ctx, "chatbot.event", []byte(`{"from":"1"}`)))
	select {
	case got := <-delivered:
		require.Equal(t, `chatbot.event:{"from":"1"}`, got)
	case <-time.After(10 * time.Second):
		t.Fatal("job was not delivered")
	}
	cancel()
	q.Wait()
}

func TestValkeyQueueKeepsPerSenderOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := startValkey(t)

	const jobs = 30
	var (
		mu    sync.Mutex
		order = map[string][]int{}
		done  = make(chan struct{})
		count int
	)
	q := NewValkeyQueue(client, ValkeyOptions{
		Key:      "test:ordered",
		Workers:  3,
		ShardKey: func(payload []byte) string { return strings.SplitN(string(payload), ":", 2)[0] },
	}, func(_ context.Context, _ string, payload []byte) error {
		parts := strings.SplitN(string(payload), ":", 2)
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return err
		}
		time.Sleep(time.Duration(jobs-n) * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		order[parts[0]] = append(order[parts[0]], n)
		count++
		if count == 2*jobs {
			close(done)
		}
		return nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for i := 0; i < jobs; i++ {
		require.NoError(t, q.Enqueue(ctx, "chatbot.event", []byte(fmt.Sprintf("alice:%d", i))))
		require.NoError(t, q.Enqueue(ctx, "chatbot.event", []byte(fmt.Sprintf("bob:%d", i))))
	}
	q.Start(ctx)

	select {
	case <-done:
	case <-time.After(20 * time.Second):
		t.Fatal("jobs were not delivered")
	}
	cancel()
	q.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, sender := range []string{"alice", "bob"} {
		require.Len(t, order[sender], jobs)
		for i, n := range order[sender] {
			require.Equal(t, i, n, sender)
		}
	}
}
