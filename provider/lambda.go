package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ZaguanLabs/doclai"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaInvoker is the part of *lambda.Client the provider uses.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaConfig holds configuration for the Lambda provider.
type LambdaConfig struct {
	FunctionName string // Name or ARN of the generation function
	Region       string // AWS region (default: from the environment)
}

// GenerateRequest is the payload sent to a generation function.
type GenerateRequest struct {
	Directive string `json:"directive"`
	Content   string `json:"content"`
}

// GenerateResponse is the payload returned by a generation function.
type GenerateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// LambdaProvider implements Generator by invoking an AWS Lambda function.
type LambdaProvider struct {
	client       LambdaInvoker
	functionName string
}

// NewLambdaProvider creates a provider using the default AWS credential chain.
func NewLambdaProvider(ctx context.Context, cfg LambdaConfig) (*LambdaProvider, error) {
	if cfg.FunctionName == "" {
		return nil, &doclai.ProviderError{Message: "lambda function name is required"}
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, &doclai.ProviderError{Message: "failed to load AWS config", Cause: err}
	}

	return NewLambdaProviderWithClient(lambda.NewFromConfig(awsCfg), cfg.FunctionName), nil
}

// NewLambdaProviderWithClient creates a provider around an existing invoker.
func NewLambdaProviderWithClient(client LambdaInvoker, functionName string) *LambdaProvider {
	return &LambdaProvider{client: client, functionName: functionName}
}

// Generate invokes the function synchronously with the prompt.
func (p *LambdaProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	payload, err := json.Marshal(GenerateRequest{Directive: prompt.Directive, Content: prompt.Content})
	if err != nil {
		return "", &doclai.ProviderError{Message: "failed to marshal request", Cause: err}
	}

	functionName := p.functionName
	result, err := p.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: &functionName,
		Payload:      payload,
	})
	if err != nil {
		return "", &doclai.ProviderError{
			Message:   fmt.Sprintf("failed to invoke %s", functionName),
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if result.FunctionError != nil {
		return "", &doclai.ProviderError{
			Message:   fmt.Sprintf("lambda error: %s", *result.FunctionError),
			Retryable: true,
		}
	}

	var resp GenerateResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return "", &doclai.ProviderError{Message: "failed to parse response", Cause: err}
	}

	if resp.Error != "" {
		return "", &doclai.ProviderError{Message: fmt.Sprintf("generator error: %s", resp.Error)}
	}

	return resp.Text, nil
}

// Verify LambdaProvider implements Generator
var _ Generator = (*LambdaProvider)(nil)
