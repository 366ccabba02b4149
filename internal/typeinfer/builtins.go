package typeinfer

// Builtins maps the name of a PHP core function with a statically known
// return type to that type string. The symbol store's own return-type
// annotation is looked up first; this table is consulted only when the
// store has no function of that name or its type is empty, so a project
// that declares its own typed stub for one of these names overrides the
// entry here. Functions in neither yield the empty (unknown) type.
var Builtins = map[string]string{
	"intval":   "int",
	"strval":   "string",
	"floatval": "float",
	"doubleval": "float",
	"boolval":  "bool",
	"settype":  "bool",

	"count":  "int",
	"sizeof": "int",

	"is_array":    "bool",
	"is_bool":     "bool",
	"is_callable": "bool",
	"is_double":   "bool",
	"is_float":    "bool",
	"is_int":      "bool",
	"is_integer":  "bool",
	"is_long":     "bool",
	"is_null":     "bool",
	"is_numeric":  "bool",
	"is_object":   "bool",
	"is_scalar":   "bool",
	"is_string":   "bool",
	"isset":       "bool",
	"empty":       "bool",

	"sprintf":    "string",
	"vsprintf":   "string",
	"str_repeat": "string",
	"str_pad":    "string",
	"strtolower": "string",
	"strtoupper": "string",
	"trim":       "string",
	"ltrim":      "string",
	"rtrim":      "string",
	"implode":    "string",
	"join":       "string",
	"substr":     "string",
	"number_format": "string",
	"json_encode":   "string",

	"explode":    "array",
	"array_keys": "array",
	"array_values": "array",
	"array_merge": "array",
	"array_reverse": "array",
	"array_unique":  "array",
	"array_slice":   "array",
	"str_split":     "array",
	"json_decode":   "mixed",

	"array_key_exists": "bool",
	"in_array":         "bool",
	"array_key_first":  "mixed",
	"array_key_last":   "mixed",
}

// PassthroughElementFuncs names functions whose result is an array of
// the same element type as one of their array arguments — the type
// resolver contributes "T[]" when it can statically determine T from
// the first argument's inferred type, rather than a fixed entry above.
var PassthroughElementFuncs = map[string]bool{
	"array_map":    true,
	"array_filter": true,
	"array_reverse": true,
	"array_unique":  true,
	"array_values":  true,
}
