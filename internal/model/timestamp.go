package model

import "time"

// TimestampLayout ISO-8601，UTC，毫秒精度，按字符串排序即按时间排序
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Now 当前时间的 ISO-8601 字符串
func Now() string {
	return time.Now().UTC().Format(TimestampLayout)
}
