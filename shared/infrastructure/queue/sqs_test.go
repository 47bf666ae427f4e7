package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harshkrt/FinAgent/shared/mocks"
)

type mockSQSAPI struct {
	mock.Mock
}

func (m *mockSQSAPI) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sqs.GetQueueUrlOutput)
	return out, args.Error(1)
}

func (m *mockSQSAPI) SendMessage(ctx context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sqs.SendMessageOutput)
	return out, args.Error(1)
}

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789012/doc_processing_queue"

func TestSQSQueue_Publish(t *testing.T) {
	api := new(mockSQSAPI)
	api.On("GetQueueUrl", mock.Anything, mock.MatchedBy(func(in *sqs.GetQueueUrlInput) bool {
		return aws.ToString(in.QueueName) == "doc_processing_queue"
	})).Return(&sqs.GetQueueUrlOutput{QueueUrl: aws.String(testQueueURL)}, nil).Once()
	api.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		return aws.ToString(in.QueueUrl) == testQueueURL &&
			aws.ToString(in.MessageBody) == `{"s3_path":"raw_filings/ACME/10-Q/report.pdf"}`
	})).Return(&sqs.SendMessageOutput{}, nil)

	logger, metrics := mocks.NewObservability()
	q := newSQSQueue(api, logger, metrics)

	require.NoError(t, q.Publish(context.Background(), processingMessage()))
	require.NoError(t, q.Publish(context.Background(), processingMessage()))

	api.AssertNumberOfCalls(t, "GetQueueUrl", 1)
	api.AssertNumberOfCalls(t, "SendMessage", 2)
	assert.Equal(t, int64(2), metrics.CounterTotal("queue.publish.success"))
}

func TestSQSQueue_PublishErrors(t *testing.T) {
	t.Run("queue url lookup fails", func(t *testing.T) {
		api := new(mockSQSAPI)
		api.On("GetQueueUrl", mock.Anything, mock.Anything).Return(nil, errors.New("QueueDoesNotExist"))

		logger, metrics := mocks.NewObservability()
		err := newSQSQueue(api, logger, metrics).Publish(context.Background(), processingMessage())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get queue URL")
		api.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	})

	t.Run("send fails", func(t *testing.T) {
		api := new(mockSQSAPI)
		api.On("GetQueueUrl", mock.Anything, mock.Anything).
			Return(&sqs.GetQueueUrlOutput{QueueUrl: aws.String(testQueueURL)}, nil)
		api.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		logger, metrics := mocks.NewObservability()
		err := newSQSQueue(api, logger, metrics).Publish(context.Background(), processingMessage())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send message")
	})
}

func TestSQSQueue_ConcurrentPublish(t *testing.T) {
	api := new(mockSQSAPI)
	api.On("GetQueueUrl", mock.Anything, mock.Anything).
		Return(&sqs.GetQueueUrlOutput{QueueUrl: aws.String(testQueueURL)}, nil)
	api.On("SendMessage", mock.Anything, mock.Anything).Return(&sqs.SendMessageOutput{}, nil)

	logger, metrics := mocks.NewObservability()
	q := newSQSQueue(api, logger, metrics)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, q.Publish(context.Background(), processingMessage()))
		}()
	}
	wg.Wait()

	api.AssertNumberOfCalls(t, "SendMessage", 10)
}
