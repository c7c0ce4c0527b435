package generated

//go:generate oapi-codegen --config=oapi-codegen.yaml ../spec/openapi.yaml
