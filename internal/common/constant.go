package common

// AuthorizationHeaderName carries the bearer token on requests to the backend.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// Record type names, shared by the local cache, the IPC surface and the
// backend wire format.
const (
	TypeSale       = "sale"
	TypeCustomer   = "customer"
	TypeProduct    = "product"
	TypeWorker     = "worker"
	TypeCorrection = "correction"
)

// RecordTypes lists every cached record type in document order.
var RecordTypes = []string{TypeSale, TypeCustomer, TypeProduct, TypeWorker, TypeCorrection}
