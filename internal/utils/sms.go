package utils

// SMS segment limits per GSM 03.38.  A message that fits entirely in
// the GSM-7 alphabet packs 160 characters into one segment (153 when
// concatenated); any other character forces UCS-2 encoding with 70
// characters per segment (67 when concatenated).
const (
    gsmSingle  = 160
    gsmMulti   = 153
    ucs2Single = 70
    ucs2Multi  = 67
)

// gsm7 holds the basic GSM-7 character set plus the extension table
// characters (which cost two septets each).
var gsm7 = func() map[rune]bool {
    const basic = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑܧ¿abcdefghijklmnopqrstuvwxyzäöñüà"
    m := make(map[rune]bool, len(basic))
    for _, r := range basic {
        m[r] = true
    }
    return m
}()

var gsm7Extension = map[rune]bool{
    '^': true, '{': true, '}': true, '\\': true, '[': true,
    ']': true, '~': true, '|': true, '€': true,
}

// SMSSegments returns the number of SMS segments a message body will
// occupy when sent through Twilio.
func SMSSegments(body string) int {
    if body == "" {
        return 0
    }
    septets := 0
    gsm := true
    for _, r := range body {
        switch {
        case gsm7[r]:
            septets++
        case gsm7Extension[r]:
            septets += 2
        default:
            gsm = false
        }
    }
    if gsm {
        if septets <= gsmSingle {
            return 1
        }
        return (septets + gsmMulti - 1) / gsmMulti
    }
    runes := len([]rune(body))
    if runes <= ucs2Single {
        return 1
    }
    return (runes + ucs2Multi - 1) / ucs2Multi
}
