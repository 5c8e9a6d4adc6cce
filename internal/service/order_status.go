package service

import (
	"strings"
	"time"

	"github.com/velamall/internal/constants"
	"github.com/velamall/internal/models"
	"github.com/velamall/internal/repository"
)

// allowedTransitions 订单状态机
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusCreated: {
		constants.OrderStatusApproved: true,
		constants.OrderStatusRejected: true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusApproved: {
		constants.OrderStatusCompleted: true,
		constants.OrderStatusCanceled:  true,
	},
	constants.OrderStatusRejected: {
		constants.OrderStatusCanceled: true,
	},
}

// canTransition 判断状态迁移是否允许
func canTransition(from, to string) bool {
	targets, ok := allowedTransitions[strings.ToLower(strings.TrimSpace(from))]
	if !ok {
		return false
	}
	return targets[strings.ToLower(strings.TrimSpace(to))]
}

// isTerminalStatus 判断是否终态
func isTerminalStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case constants.OrderStatusCompleted, constants.OrderStatusCanceled:
		return true
	}
	return false
}

// syncParentStatus 汇总父订单状态并写入
func syncParentStatus(orderRepo repository.OrderRepository, parentID uint, now time.Time) (string, error) {
	if parentID == 0 {
		return "", nil
	}
	parent, err := orderRepo.GetByID(parentID)
	if err != nil {
		return "", err
	}
	if parent == nil || parent.ParentID != nil {
		return "", nil
	}
	if parent.Status == constants.OrderStatusCanceled {
		return parent.Status, nil
	}
	newStatus := calcParentStatus(parent.Children, parent.Status)
	if newStatus == "" || newStatus == parent.Status {
		return parent.Status, nil
	}
	updates := map[string]interface{}{
		"updated_at": now,
	}
	switch newStatus {
	case constants.OrderStatusCompleted:
		updates["completed_at"] = now
	case constants.OrderStatusCanceled:
		updates["canceled_at"] = now
	}
	if err := orderRepo.UpdateStatus(parent.ID, newStatus, updates); err != nil {
		return "", err
	}
	return newStatus, nil
}

func calcParentStatus(children []models.Order, currentStatus string) string {
	if len(children) == 0 {
		return currentStatus
	}
	var createdCount int
	var approvedCount int
	var rejectedCount int
	var completedCount int
	var canceledCount int
	for _, child := range children {
		switch strings.ToLower(strings.TrimSpace(child.Status)) {
		case constants.OrderStatusCreated:
			createdCount++
		case constants.OrderStatusApproved:
			approvedCount++
		case constants.OrderStatusRejected:
			rejectedCount++
		case constants.OrderStatusCompleted:
			completedCount++
		case constants.OrderStatusCanceled:
			canceledCount++
		}
	}
	if canceledCount == len(children) {
		return constants.OrderStatusCanceled
	}
	// 全部子订单收敛到终态后父订单才收敛
	if completedCount+canceledCount+rejectedCount == len(children) {
		if completedCount > 0 {
			return constants.OrderStatusCompleted
		}
		if rejectedCount > 0 {
			return constants.OrderStatusRejected
		}
		return constants.OrderStatusCanceled
	}
	if createdCount > 0 {
		return constants.OrderStatusCreated
	}
	if approvedCount > 0 {
		return constants.OrderStatusApproved
	}
	return currentStatus
}
