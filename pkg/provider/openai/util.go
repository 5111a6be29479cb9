package openai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
)

func convertError(err error) error {
	var apierr *openai.Error

	if errors.As(err, &apierr) {
		return fmt.Errorf("openai: %s (status %d): %w", apierr.Message, apierr.StatusCode, err)
	}

	return err
}

// reasoning model families reject a custom temperature and take a reasoning effort instead
var reasoningPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

func isReasoningModel(model string) bool {
	model = strings.ToLower(model)

	// deployments and gateways often prefix the vendor
	model = model[strings.LastIndex(model, "/")+1:]

	for _, prefix := range reasoningPrefixes {
		if model == prefix || strings.HasPrefix(model, prefix+"-") || strings.HasPrefix(model, prefix+".") {
			return true
		}
	}

	return false
}
