package schema

// Reserved slot numbers and meta-names, grounded on original_source's
// reserved/schema.h (DB_SLOT_ROOT, DB_SLOT_VERSION, DB_SLOT_ID, the "Q"
// id-term prefix, and the default index_uuid_field strategy).
const (
	// SlotRoot is the root document's implicit slot.
	SlotRoot uint32 = 0
	// SlotVersion is the reserved slot for the "version" meta-field
	// (spec.md §3: "uses slot DB_SLOT_VERSION with concrete type positive").
	SlotVersion uint32 = 1
	// SlotID is the reserved slot for the document id.
	SlotID uint32 = 2
)

// IDPrefix is the reserved byte prefix every id term is bound under
// (spec.md §4.6: "the id's term is always prefixed with Q").
const IDPrefix = "Q"

// NumericIDSentinel is the reserved autoincrement sentinel id term; the
// indexing driver skips emitting it as a boolean term (spec.md §4.7).
const NumericIDSentinel = IDPrefix + "N\x80"

// UUIDMetaName is the reserved meta-name a dynamic UUID path segment is
// filed under when no explicit field declares it.
const UUIDMetaName = "_uuid"

// VersionFieldName is the reserved document-level meta field name; it is
// never read from or written into source document data (spec.md §3).
const VersionFieldName = "_version"

// IDFieldName is the reserved document-level id field name.
const IDFieldName = "_id"

// SchemaVersion is DB_VERSION_SCHEMA: the version stamped on a freshly
// bootstrapped schema (spec.md §3's Lifecycle).
const SchemaVersion = 2.0

// LimitPartialPathsDepth bounds how many ancestor partial prefixes a
// namespace field expands into (spec.md §4.6).
const LimitPartialPathsDepth = 6

// DefaultIndexUUIDField is the strategy used when a path's persisted
// properties don't already pin one down.
const DefaultIndexUUIDField = UUIDStrategyBoth

// reserved property key names, used both as TOML field keys in
// persist.go and as the dispatch keys in process.go — the same names
// original_source's reserved/schema.h uses for its RESERVED_* string
// table.
const (
	keyType      = "type"
	keyPrefix    = "prefix"
	keySlot      = "slot"
	keyPosition  = "position"
	keyWeight    = "weight"
	keySpelling  = "spelling"
	keyPositions = "positions"
	keyIndex     = "index"
	keyAccuracy  = "accuracy"
	keyAccPrefix = "acc_prefix"
	keyLanguage  = "language"
	keyStopStrategy = "stop_strategy"
	keyStemStrategy = "stem_strategy"
	keyStemLanguage = "stem_language"
	keyBoolTerm  = "bool_term"
	keyPartials  = "partials"
	keyError     = "error"
	keyStore     = "store"
	keyDynamic   = "dynamic"
	keyStrict    = "strict"
	keyNamespace = "namespace"
	keyPartialPaths = "partial_paths"
	keyEndpoint  = "endpoint"
	keyUUIDField = "uuid_field"
	keyUUIDPath  = "uuid_path"

	keyDateDetection      = "date_detection"
	keyTimeDetection      = "time_detection"
	keyTimedeltaDetection = "timedelta_detection"
	keyNumericDetection   = "numeric_detection"
	keyGeoDetection       = "geo_detection"
	keyBoolDetection      = "bool_detection"
	keyTextDetection      = "text_detection"
	keyTermDetection      = "term_detection"
	keyUUIDDetection      = "uuid_detection"

	keyIndexUUIDField = "index_uuid_field"
)
