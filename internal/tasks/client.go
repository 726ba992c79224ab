package tasks

import (
	"fmt"
	"time"

	"leadcrm/internal/utils/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskClient handles task enqueuing with improved error handling and context support
type TaskClient struct {
	client       *asynq.Client
	logger       *logger.Logger
	redisOptions *redis.Options
	redisClient  *redis.Client
}

func (c *TaskClient) GetClient() *asynq.Client {
	return c.client
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	redisClient := redis.NewClient(
		&redis.Options{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
	)

	return &TaskClient{
		client: asynq.NewClient(redisOpt),
		redisOptions: &redis.Options{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		redisClient: redisClient,
		logger:      logger.New("TASKS"),
	}
}

// EnqueueReservationExpiry schedules an expiry pass at the moment a
// hold runs out, so an expiring reservation does not wait for the next
// periodic sweep.
func (c *TaskClient) EnqueueReservationExpiry(at time.Time) error {
	info, err := c.client.Enqueue(
		asynq.NewTask(TaskTypeReservationExpiry, nil),
		asynq.ProcessAt(at),
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutShort),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue reservation expiry: %w", err)
	}

	c.logger.Info("enqueued reservation expiry %s at %s", info.ID, at.Format(time.RFC3339))
	return nil
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}
