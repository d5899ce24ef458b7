package otel

import "go.opentelemetry.io/otel/attribute"

// Attribute keys following OpenTelemetry semantic conventions where applicable.
func operationAttr(op string) attribute.KeyValue {
	return attribute.String("appforge.operation", op)
}

func sessionIDAttr(id string) attribute.KeyValue {
	return attribute.String("appforge.session_id", id)
}

func fallbackAttr(fallback bool) attribute.KeyValue {
	return attribute.Bool("appforge.fallback", fallback)
}

func llmProviderAttr(provider string) attribute.KeyValue {
	return attribute.String("llm.provider", provider)
}

func llmModelAttr(model string) attribute.KeyValue {
	return attribute.String("llm.model", model)
}

func promptSizeAttr(size int) attribute.KeyValue {
	return attribute.Int("llm.prompt_size", size)
}

func responseSizeAttr(size int) attribute.KeyValue {
	return attribute.Int("llm.response_size", size)
}
