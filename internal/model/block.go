package model

import "time"

// Block 拉黑关系（blocker 拉黑 blocked），双向隐藏内容
type Block struct {
	BlockerID string    `gorm:"primaryKey;type:varchar(64);check:chk_blocks_not_self,blocker_id <> blocked_id"`
	BlockedID string    `gorm:"primaryKey;type:varchar(64);index:idx_block_blocked"`
	CreatedAt time.Time
}

func (Block) TableName() string { return "blocks" }
