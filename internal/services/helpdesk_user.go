package services

import (
	sq "github.com/Masterminds/squirrel"

	"soporte/internal/entities"
	"soporte/internal/infrastructure/bd"
)

// HelpdeskUser - сотрудник вместе с правилом доступа к очередям.
type HelpdeskUser struct {
	entities.User
	// RestrictQueues - видны только очереди с правом queue_access_<slug>.
	RestrictQueues bool
}

// NewHelpdeskUser: суперпользователя ограничение по очередям не касается.
func NewHelpdeskUser(user entities.User, perQueueStaffPermission bool) HelpdeskUser {
	return HelpdeskUser{
		User:           user,
		RestrictQueues: perQueueStaffPermission && !user.IsSuperuser,
	}
}

// QueueAccess - условие на колонку с id очереди, nil если доступ не ограничен.
func (u HelpdeskUser) QueueAccess(column string) sq.Sqlizer {
	return bd.QueueAccess(column, u.ID, u.RestrictQueues)
}
