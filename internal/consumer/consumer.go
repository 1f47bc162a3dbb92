package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/minio/minio-go/v7"
	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"tracelens/internal/dao"
	"tracelens/internal/model"
	"tracelens/internal/utils"
	"tracelens/pkg/log"
)

const previewLimit = 1000

type Consumer struct {
	conf     *Config
	ctx      context.Context
	cancel   context.CancelFunc
	consumer *nsq.Consumer
	minioCli *minio.Client
	wg       sync.WaitGroup
	logger   *logrus.Entry
}

func NewConsumer(conf *Config) (*Consumer, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger := log.GetLogger(ctx).WithField("component", "consumer")

	config := nsq.NewConfig()
	config.MsgTimeout = time.Minute
	config.MaxInFlight = 10
	config.MaxAttempts = 2

	consumer, err := nsq.NewConsumer(conf.NSQ.Topic, conf.NSQ.Channel, config)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}

	minioCli, err := utils.NewMinioClient(conf.S3.Endpoint, conf.S3.AccessKeyID,
		conf.S3.SecretAccessKey, conf.S3.Region, conf.S3.UseSSL)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	c := &Consumer{
		conf:     conf,
		ctx:      ctx,
		cancel:   cancel,
		consumer: consumer,
		minioCli: minioCli,
		logger:   logger,
	}

	consumer.AddHandler(c)

	return c, nil
}

func (c *Consumer) HandleMessage(message *nsq.Message) error {
	message.DisableAutoResponse()

	var msg dao.TraceIngestMessage
	if err := json.Unmarshal(message.Body, &msg); err != nil {
		// malformed payloads never become valid; drop instead of requeueing
		c.logger.WithError(err).Error("Failed to unmarshal trace ingest message")
		message.Finish()
		return nil
	}
	if msg.RequestId == "" || msg.ExperimentId == "" {
		c.logger.Errorf("Dropping trace without request_id/experiment_id: %.200s", message.Body)
		message.Finish()
		return nil
	}

	c.logger.WithFields(logrus.Fields{
		"requestId":    msg.RequestId,
		"experimentId": msg.ExperimentId,
		"status":       msg.Status,
		"spanCount":    len(msg.Spans),
	}).Info("Processing trace ingest message")

	if err := c.persistTrace(&msg); err != nil {
		c.logger.WithError(err).Errorf("Failed to persist trace %s", msg.RequestId)
		return err
	}

	message.Finish()
	c.logger.Debugf("Successfully processed trace %s", msg.RequestId)
	return nil
}

func (c *Consumer) persistTrace(msg *dao.TraceIngestMessage) error {
	payloadKey, err := c.archivePayload(msg)
	if err != nil {
		return err
	}

	status := msg.Status
	if status != model.TraceStatusError {
		status = model.TraceStatusOK
	}
	trace := &model.Trace{
		RequestId:       msg.RequestId,
		ExperimentId:    msg.ExperimentId,
		TimestampMs:     msg.TimestampMs,
		ExecutionTimeMs: msg.ExecutionTimeMs,
		Status:          status,
		InputTokens:     msg.InputTokens,
		OutputTokens:    msg.OutputTokens,
		RequestPreview:  preview(msg.Request),
		ResponsePreview: preview(msg.Response),
		PayloadKey:      payloadKey,
	}
	if err := model.CreateTrace(trace); err != nil {
		return fmt.Errorf("create trace: %w", err)
	}

	for key, value := range msg.Tags {
		tag := &model.TraceTag{
			RequestId:    msg.RequestId,
			ExperimentId: msg.ExperimentId,
			TimestampMs:  msg.TimestampMs,
			TagKey:       key,
			TagValue:     value,
		}
		if err := model.DB.Create(tag).Error; err != nil {
			return fmt.Errorf("create tag %s: %w", key, err)
		}
	}

	for _, spec := range msg.Spans {
		span := &model.Span{
			RequestId:    msg.RequestId,
			ExperimentId: msg.ExperimentId,
			TimestampMs:  msg.TimestampMs,
			Name:         spec.Name,
			SpanType:     spec.SpanType,
			Status:       spec.Status,
			DurationMs:   spec.DurationMs,
		}
		if err := model.DB.Create(span).Error; err != nil {
			return fmt.Errorf("create span %s: %w", spec.Name, err)
		}
	}

	for _, spec := range msg.Assessments {
		assessment := &model.Assessment{
			RequestId:    msg.RequestId,
			ExperimentId: msg.ExperimentId,
			TimestampMs:  msg.TimestampMs,
			Name:         spec.Name,
			DataType:     spec.DataType,
			Source:       spec.Source,
			BoolValue:    spec.BoolValue,
			NumericValue: spec.NumericValue,
			StringValue:  spec.StringValue,
		}
		if err := model.DB.Create(assessment).Error; err != nil {
			return fmt.Errorf("create assessment %s: %w", spec.Name, err)
		}
	}
	return nil
}

// archivePayload stores the full request/response in object storage and
// returns the object key; the database keeps previews only.
func (c *Consumer) archivePayload(msg *dao.TraceIngestMessage) (string, error) {
	if len(msg.Request) == 0 && len(msg.Response) == 0 {
		return "", nil
	}
	payload, err := json.Marshal(map[string]json.RawMessage{
		"request":  msg.Request,
		"response": msg.Response,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	key := fmt.Sprintf("traces/%s/%s.json", msg.ExperimentId, msg.RequestId)
	if err := utils.UploadBytesToMinio(c.ctx, c.minioCli, c.conf.S3.Bucket, key, payload, ""); err != nil {
		return "", err
	}
	return key, nil
}

func preview(raw json.RawMessage) string {
	s := string(raw)
	if len(s) <= previewLimit {
		return s
	}
	// back up to a rune boundary so the cut never splits a multi-byte rune
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (c *Consumer) Start() error {
	c.logger.Info("Starting NSQ consumer...")

	err := c.consumer.ConnectToNSQDs(c.conf.NSQ.NSQDAddrs)
	if err != nil {
		return fmt.Errorf("failed to connect to NSQs: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		c.consumer.Stop()
	}()

	return nil
}

func (c *Consumer) Stop() {
	c.cancel()
	c.wg.Wait()
}
