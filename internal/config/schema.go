package config

// suiteSchema is the JSON Schema every suite file must satisfy before the
// scenarios are constructed. Structural errors surface here with field
// paths; semantic invariants are re-checked by ScenarioConfig.Validate.
const suiteSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "scenarios"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "scenarios": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": [
          "name", "kind", "durationSeconds", "concurrency",
          "targetRatePerSecond", "targetLatencyMillis",
          "maxErrorRateFraction", "workloadSize", "subjects"
        ],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "kind": {"enum": ["request-response", "streaming"]},
          "durationSeconds": {"type": "integer", "minimum": 1},
          "concurrency": {"type": "integer", "minimum": 1},
          "targetRatePerSecond": {"type": "integer", "minimum": 1},
          "rampUpSeconds": {"type": "integer", "minimum": 0},
          "targetLatencyMillis": {"type": "number", "exclusiveMinimum": 0},
          "maxErrorRateFraction": {"type": "number", "minimum": 0, "maximum": 1},
          "workloadSize": {"type": "integer", "minimum": 1},
          "subjects": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          },
          "pacing": {"enum": ["batch", "token-bucket"]},
          "operationTimeoutMillis": {"type": "integer", "minimum": 0}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`
