package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

var testRecord = models.EvaluationRecord{
	ID:           "3b0d6a52-8d1f-4f7a-9a55-2b1f5f0b6c11",
	Product:      models.Submission{VendorName: "TechCorp", ProductName: "Smart Watch", Description: "d", Price: 299.99},
	Evaluation:   models.Evaluation{Score: 85, Decision: models.DecisionApproved, EvaluationMethod: models.MethodModel, Threshold: 70},
	RawResponse:  `{"choices":[]}`,
	Timestamp:    time.Date(2026, 2, 7, 9, 30, 0, 0, time.UTC),
	AgentVersion: "1.0.0",
}

type fakeCollection struct {
	docs []interface{}
	err  error
}

func (f *fakeCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.docs = append(f.docs, document)
	return &mongo.InsertOneResult{InsertedID: "id"}, nil
}

func TestMongoRecorderInsertsRecord(t *testing.T) {
	coll := &fakeCollection{}
	require.NoError(t, NewMongoRecorder(coll).Record(context.Background(), testRecord))
	require.Len(t, coll.docs, 1)
	assert.Equal(t, testRecord, coll.docs[0])
}

func TestMongoRecorderWrapsErrors(t *testing.T) {
	coll := &fakeCollection{err: errors.New("no primary")}
	err := NewMongoRecorder(coll).Record(context.Background(), testRecord)
	assert.ErrorContains(t, err, "insert evaluation record: no primary")
}

type fakeUploader struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(input.Body)
	f.inputs = append(f.inputs, input)
	f.bodies = append(f.bodies, body)
	return &manager.UploadOutput{}, nil
}

func TestS3ArchiverUploadsRecord(t *testing.T) {
	up := &fakeUploader{}
	archiver := newS3Archiver(up, "catalog-audit", "prod")

	require.NoError(t, archiver.Record(context.Background(), testRecord))
	require.Len(t, up.inputs, 1)
	in := up.inputs[0]
	assert.Equal(t, "catalog-audit", aws.ToString(in.Bucket))
	assert.Equal(t, "prod/evaluations/2026/02/07/3b0d6a52-8d1f-4f7a-9a55-2b1f5f0b6c11.json", aws.ToString(in.Key))
	assert.Equal(t, "application/json", aws.ToString(in.ContentType))
	assert.Equal(t, s3types.ServerSideEncryptionAes256, in.ServerSideEncryption)

	var decoded models.EvaluationRecord
	require.NoError(t, json.Unmarshal(up.bodies[0], &decoded))
	assert.Equal(t, testRecord.Evaluation, decoded.Evaluation)
}

func TestS3ArchiverEmptyPrefix(t *testing.T) {
	archiver := newS3Archiver(&fakeUploader{}, "b", "")
	assert.Equal(t, "evaluations/2026/02/07/3b0d6a52-8d1f-4f7a-9a55-2b1f5f0b6c11.json", archiver.ObjectKey(testRecord))
}

type fakeWriter struct {
	failures int
	calls    int
	messages []kafka.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("leader not available")
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisherRetriesThenSucceeds(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := newKafkaPublisher(w, 3)
	p.backoff = time.Millisecond

	event := models.EvaluationEvent{Product: testRecord.Product, Evaluation: testRecord.Evaluation, Timestamp: testRecord.Timestamp}
	require.NoError(t, p.Publish(context.Background(), "Smart Watch", event))
	assert.Equal(t, 3, w.calls)
	require.Len(t, w.messages, 1)
	assert.Equal(t, "Smart Watch", string(w.messages[0].Key))

	var decoded models.EvaluationEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, 85, decoded.Evaluation.Score)
}

func TestKafkaPublisherGivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := newKafkaPublisher(w, 2)
	p.backoff = time.Millisecond

	err := p.Publish(context.Background(), "k", map[string]string{"a": "b"})
	assert.ErrorContains(t, err, "after 2 attempts")
	assert.Equal(t, 2, w.calls)
}

func TestKafkaPublisherStopsOnContextDone(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := newKafkaPublisher(w, 5)
	p.backoff = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Publish(ctx, "k", "v")
	assert.Error(t, err)
	assert.Equal(t, 1, w.calls)
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaPublisherConfig{Topic: "t"})
	assert.Error(t, err)
	_, err = NewKafkaPublisher(KafkaPublisherConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	p, err := NewKafkaPublisher(KafkaPublisherConfig{Brokers: []string{"localhost:9092"}, Topic: "product-evaluations"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestMultiRecorderJoinsErrors(t *testing.T) {
	mem := NewMemoryRecorder()
	failing := NewMongoRecorder(&fakeCollection{err: errors.New("down")})

	err := MultiRecorder{mem, failing}.Record(context.Background(), testRecord)
	assert.ErrorContains(t, err, "down")
	assert.Len(t, mem.Records(), 1)
}
