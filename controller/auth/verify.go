package auth

import "wolf-push-service/tool"

// verifySign 可替换，便于测试时注入桩
var verifySign = tool.VerifySign
