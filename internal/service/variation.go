package service

import (
	"strconv"
	"strings"

	"github.com/velamall/internal/models"
)

// validateTierIdx 校验索引元组长度与每个轴位的取值范围
func validateTierIdx(variations models.VariationList, tierIdx []int) error {
	if len(tierIdx) == 0 || len(tierIdx) > len(variations) {
		return ErrTierIndexInvalid
	}
	for axis, idx := range tierIdx {
		if idx < 0 || idx >= len(variations[axis].Values) {
			return ErrTierIndexInvalid
		}
	}
	return nil
}

// buildTierCode 索引元组的规范编码，用作同 SPU 内的唯一键
func buildTierCode(tierIdx []int) string {
	parts := make([]string, 0, len(tierIdx))
	for _, idx := range tierIdx {
		parts = append(parts, strconv.Itoa(idx))
	}
	return strings.Join(parts, "-")
}

// resolveTierValues 按轴位把索引元组解析为「轴名 → 取值」
func resolveTierValues(variations models.VariationList, tierIdx []int) models.JSON {
	resolved := models.JSON{}
	for axis, idx := range tierIdx {
		if axis >= len(variations) {
			break
		}
		if idx < 0 || idx >= len(variations[axis].Values) {
			continue
		}
		resolved[variations[axis].Name] = variations[axis].Values[idx]
	}
	return resolved
}

// validateVariations 校验变体轴定义本身
func validateVariations(variations models.VariationList) error {
	seen := map[string]bool{}
	for _, axis := range variations {
		name := strings.TrimSpace(axis.Name)
		if name == "" || len(axis.Values) == 0 {
			return ErrTierIndexInvalid
		}
		if seen[name] {
			return ErrTierIndexInvalid
		}
		seen[name] = true
	}
	return nil
}
