package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Shopee Open Platform 环境地址
const (
	ProductionBaseURL = "https://partner.shopeemobile.com"
	TestBaseURL       = "https://partner.test-stable.shopeemobile.com"
)

// BaseURLFor 按环境选择接口地址，test 为沙箱，其余为生产
func BaseURLFor(environment string) string {
	if environment == "test" {
		return TestBaseURL
	}
	return ProductionBaseURL
}

// 授权类接口，签名不包含 access_token 和 shop_id
var tokenPaths = map[string]bool{
	"/api/v2/auth/token/get":        true,
	"/api/v2/auth/access_token/get": true,
}

// IsTokenPath 是否为授权类接口
func IsTokenPath(path string) bool {
	return tokenPaths[path]
}

// Sign 计算请求签名
// 签名原文: partner_id + path + timestamp [+ access_token + shop_id]，HMAC-SHA256 后转小写十六进制
func Sign(partnerKey string, partnerID int64, path string, timestamp int64, accessToken string, shopID int64) string {
	base := strconv.FormatInt(partnerID, 10) + path + strconv.FormatInt(timestamp, 10)
	if !IsTokenPath(path) && shopID != 0 {
		base += accessToken + strconv.FormatInt(shopID, 10)
	}

	mac := hmac.New(sha256.New, []byte(partnerKey))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}
