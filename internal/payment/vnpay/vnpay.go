package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Version = "2.1.0"

	CommandPay = "pay"

	// ResponseCodeSuccess 网关应答码，"00" 表示支付成功
	ResponseCodeSuccess = "00"

	defaultLocale       = "vn"
	defaultOrderType    = "other"
	defaultExpireMin    = 15
	timestampLayout     = "20060102150405"
	secureHashParam     = "vnp_SecureHash"
	secureHashTypeParam = "vnp_SecureHashType"
)

var (
	ErrConfigInvalid    = errors.New("vnpay config invalid")
	ErrAmountInvalid    = errors.New("vnpay amount invalid")
	ErrSignatureInvalid = errors.New("vnpay signature invalid")
	ErrCallbackInvalid  = errors.New("vnpay callback invalid")
)

// gatewayZone VNPay 网关时间戳使用 GMT+7
var gatewayZone = time.FixedZone("GMT+7", 7*3600)

// Config VNPay 网关配置
type Config struct {
	TmnCode       string `json:"tmn_code"`       // 商户终端号
	HashSecret    string `json:"hash_secret"`    // 签名密钥
	PayURL        string `json:"pay_url"`        // 收银台地址
	ReturnURL     string `json:"return_url"`     // 同步跳转地址
	ExpireMinutes int    `json:"expire_minutes"` // 支付链接有效期
}

// CreateInput 构建支付链接的输入
type CreateInput struct {
	TxnRef    string          // 商户交易号
	Amount    decimal.Decimal // 金额（VND）
	OrderInfo string          // 订单描述
	ClientIP  string          // 客户端 IP
	BankCode  string          // 指定银行（可选）
	Locale    string          // 界面语言（可选）
	Now       time.Time       // 下单时间，零值取当前时间
}

// CreateResult 构建支付链接的结果
type CreateResult struct {
	PayURL    string            // 完整跳转链接
	ExpiresAt time.Time         // 链接过期时间
	Params    map[string]string // 已签名的请求参数
}

// CallbackData 回调参数解析结果
type CallbackData struct {
	TxnRef            string // 商户交易号
	Amount            decimal.Decimal
	ResponseCode      string // vnp_ResponseCode
	TransactionStatus string // vnp_TransactionStatus
	TransactionNo     string // 网关流水号
	BankCode          string
	PayDate           string
	Raw               map[string]string
}

// Success 判断回调是否表示支付成功
func (d *CallbackData) Success() bool {
	if d == nil {
		return false
	}
	if d.ResponseCode != ResponseCodeSuccess {
		return false
	}
	// vnp_TransactionStatus 缺省时以 vnp_ResponseCode 为准
	return d.TransactionStatus == "" || d.TransactionStatus == ResponseCodeSuccess
}

// ParseConfig 解析配置
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty config", ErrConfigInvalid)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal config failed", ErrConfigInvalid)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config failed", ErrConfigInvalid)
	}
	cfg.normalize()
	return &cfg, nil
}

// ValidateConfig 校验配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.TmnCode) == "" {
		return fmt.Errorf("%w: tmn_code is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.HashSecret) == "" {
		return fmt.Errorf("%w: hash_secret is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.PayURL) == "" {
		return fmt.Errorf("%w: pay_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ReturnURL) == "" {
		return fmt.Errorf("%w: return_url is required", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) normalize() {
	c.TmnCode = strings.TrimSpace(c.TmnCode)
	c.HashSecret = strings.TrimSpace(c.HashSecret)
	c.PayURL = strings.TrimSpace(c.PayURL)
	c.ReturnURL = strings.TrimSpace(c.ReturnURL)
	if c.ExpireMinutes <= 0 {
		c.ExpireMinutes = defaultExpireMin
	}
}

// BuildPaymentURL 构建带签名的收银台跳转链接
func BuildPaymentURL(cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.TxnRef) == "" {
		return nil, fmt.Errorf("%w: txn_ref is required", ErrConfigInvalid)
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrAmountInvalid
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(gatewayZone)
	expiresAt := now.Add(time.Duration(cfg.ExpireMinutes) * time.Minute)

	orderInfo := strings.TrimSpace(input.OrderInfo)
	if orderInfo == "" {
		orderInfo = input.TxnRef
	}
	locale := strings.TrimSpace(input.Locale)
	if locale == "" {
		locale = defaultLocale
	}

	// vnp_Amount 为去小数后的金额乘以 100
	amount := input.Amount.Mul(decimal.NewFromInt(100)).Truncate(0)

	params := map[string]string{
		"vnp_Version":    Version,
		"vnp_Command":    CommandPay,
		"vnp_TmnCode":    cfg.TmnCode,
		"vnp_Amount":     amount.String(),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     input.TxnRef,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  defaultOrderType,
		"vnp_Locale":     locale,
		"vnp_ReturnUrl":  cfg.ReturnURL,
		"vnp_IpAddr":     input.ClientIP,
		"vnp_CreateDate": now.Format(timestampLayout),
		"vnp_ExpireDate": expiresAt.Format(timestampLayout),
	}
	if bankCode := strings.TrimSpace(input.BankCode); bankCode != "" {
		params["vnp_BankCode"] = bankCode
	}

	signData := buildSignData(params)
	signature := signHMAC(signData, cfg.HashSecret)

	query := encodeParams(params)
	payURL := fmt.Sprintf("%s?%s&%s=%s", cfg.PayURL, query, secureHashParam, signature)

	signed := make(map[string]string, len(params)+1)
	for k, v := range params {
		signed[k] = v
	}
	signed[secureHashParam] = signature

	return &CreateResult{
		PayURL:    payURL,
		ExpiresAt: expiresAt,
		Params:    signed,
	}, nil
}

// VerifyCallback 校验回调签名并解析回调参数。
// Return 跳转与 IPN 共用同一套签名规则。
func VerifyCallback(cfg *Config, form url.Values) (*CallbackData, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if len(form) == 0 {
		return nil, fmt.Errorf("%w: empty form", ErrCallbackInvalid)
	}

	signature := strings.TrimSpace(form.Get(secureHashParam))
	if signature == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrCallbackInvalid, secureHashParam)
	}

	params := map[string]string{}
	for key, values := range form {
		if key == secureHashParam || key == secureHashTypeParam {
			continue
		}
		if !strings.HasPrefix(key, "vnp_") {
			continue
		}
		if len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}

	expected := signHMAC(buildSignData(params), cfg.HashSecret)
	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return nil, ErrSignatureInvalid
	}

	data := &CallbackData{
		TxnRef:            params["vnp_TxnRef"],
		ResponseCode:      params["vnp_ResponseCode"],
		TransactionStatus: params["vnp_TransactionStatus"],
		TransactionNo:     params["vnp_TransactionNo"],
		BankCode:          params["vnp_BankCode"],
		PayDate:           params["vnp_PayDate"],
		Raw:               params,
	}
	if rawAmount := strings.TrimSpace(params["vnp_Amount"]); rawAmount != "" {
		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return nil, fmt.Errorf("%w: bad vnp_Amount", ErrCallbackInvalid)
		}
		// 回调金额同样是乘以 100 后的整数
		data.Amount = amount.Div(decimal.NewFromInt(100))
	}
	if data.TxnRef == "" {
		return nil, fmt.Errorf("%w: missing vnp_TxnRef", ErrCallbackInvalid)
	}
	return data, nil
}

// buildSignData 参数按键名排序后以 & 连接，键值均做 URL 编码
func buildSignData(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if params[key] == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, encodeComponent(key)+"="+encodeComponent(params[key]))
	}
	return strings.Join(pairs, "&")
}

func encodeParams(params map[string]string) string {
	return buildSignData(params)
}

// encodeComponent VNPay 使用 application/x-www-form-urlencoded 编码（空格为 +）
func encodeComponent(value string) string {
	return url.QueryEscape(value)
}

func signHMAC(content, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(content))
	return hex.EncodeToString(mac.Sum(nil))
}
