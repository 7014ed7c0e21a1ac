package clients

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/infra/storage/memstore"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
)

func TestFindOrCreate_Defaults(t *testing.T) {
	repo := memstore.NewClients()
	svc := NewService(repo, logger.NewNop())

	c, err := svc.FindOrCreate(context.Background(), domain.Client{Phone: "+7 701 123 45 67"})
	require.NoError(t, err)

	assert.Equal(t, "+77011234567", c.Phone)
	assert.Equal(t, "+77011234567", c.Name)
	assert.Equal(t, "client-77011234567@no-email.glamping.local", c.Email)
	assert.Equal(t, domain.ClientSourceManual, c.Source)
}

func TestFindOrCreate_ReusesExisting(t *testing.T) {
	repo := memstore.NewClients()
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	first, err := svc.FindOrCreate(ctx, domain.Client{Phone: "+77011234567", Name: "Иван", Source: domain.ClientSourceMessaging})
	require.NoError(t, err)
	second, err := svc.FindOrCreate(ctx, domain.Client{Phone: "+77011234567", Name: "Другое имя"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Иван", second.Name)
	assert.Equal(t, 1, repo.Count())
}

func TestFindOrCreate_ConcurrentSamePhone(t *testing.T) {
	repo := memstore.NewClients()
	repo.Delay = 20 * time.Millisecond
	svc := NewService(repo, logger.NewNop())

	const callers = 16
	ids := make([]int64, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := svc.FindOrCreate(context.Background(), domain.Client{Phone: "+77011234567", Source: domain.ClientSourceMessaging})
			if assert.NoError(t, err) {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.Count())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

type gatedClients struct {
	*memstore.Clients
	entered chan struct{}
	release chan struct{}
}

func (r *gatedClients) FindOrCreate(ctx context.Context, c *domain.Client) (*domain.Client, bool, error) {
	r.entered <- struct{}{}
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-r.release:
	}
	return r.Clients.FindOrCreate(ctx, c)
}

// отмена первого вызывающего не валит тех, кто ждет тот же номер
func TestFindOrCreate_FirstCallerCancelled(t *testing.T) {
	repo := &gatedClients{
		Clients: memstore.NewClients(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := NewService(repo, logger.NewNop())
	seed := domain.Client{Phone: "+77011234567", Source: domain.ClientSourceMessaging}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.FindOrCreate(firstCtx, seed)
		firstErr <- err
	}()
	<-repo.entered

	type result struct {
		client *domain.Client
		err    error
	}
	second := make(chan result, 1)
	go func() {
		c, err := svc.FindOrCreate(context.Background(), seed)
		second <- result{client: c, err: err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(repo.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "+77011234567", res.client.Phone)
	assert.Equal(t, 1, repo.Count())
}

func TestFindOrCreate_InvalidPhone(t *testing.T) {
	svc := NewService(memstore.NewClients(), logger.NewNop())

	_, err := svc.FindOrCreate(context.Background(), domain.Client{Phone: "abc"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetByPhone_NotFound(t *testing.T) {
	svc := NewService(memstore.NewClients(), logger.NewNop())

	_, err := svc.GetByPhone(context.Background(), "+77011234567")
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
