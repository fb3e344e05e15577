package domain

const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformWeb     = "web"
)

const (
	NotificationTypeGeneral   = "general"
	NotificationTypeOrder     = "order"
	NotificationTypePromotion = "promotion"
	NotificationTypeSystem    = "system"
	NotificationTypeSupport   = "support"
)

// Dispatch targeting modes accepted by the notification service.
const (
	TargetModeUser      = "user"
	TargetModeUsers     = "users"
	TargetModeBroadcast = "broadcast"
	TargetModeTopic     = "topic"
)

// TopicAllUsers is the reserved topic every registered device is subscribed
// to, so a topic send to it reaches every device without per-user targeting.
const TopicAllUsers = "all_users"

const ChannelPush = "push"

const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// WebSocket event names shared between server and clients.
const (
	EventConnectionConfirmed = "connection_confirmed"
	EventJoinedAdminRoom     = "joined_admin_room"
	EventPing                = "ping"
	EventPong                = "pong"
	EventJoinAdminRoom       = "join_admin_room"
	EventUpdateOrderStatus   = "update_order_status"
	EventNewOrderCreated     = "newOrderCreated"
	EventOrderUpdated        = "orderUpdated"
	EventOrderStatusChanged  = "orderStatusChanged"
	EventNotification        = "notification"
)

// IsElevated reports whether a role belongs in the shared admin broadcast
// room. The ws hub takes this as a predicate so the role set stays
// configurable in tests.
func IsElevated(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}
