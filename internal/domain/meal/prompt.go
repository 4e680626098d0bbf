package meal

import (
	"fmt"
	"strings"

	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/profile"
)

const systemPrompt = "You are a nutrition assistant for people managing diabetes. You estimate calories from meal photos and answer only with JSON."

func buildPrompt(lang i18n.Lang, description string, p *profile.Profile) string {
	var b strings.Builder
	if lang == i18n.Hindi {
		fmt.Fprintf(&b, "इस भोजन की छवि का विश्लेषण करें और निम्नलिखित उपयोगकर्ता द्वारा प्रदान किए गए विवरण का भी विश्लेषण करें: %q.\n", description)
		b.WriteString("यदि विवरण कैलोरी गणना के लिए प्रासंगिक और मान्य हैं, तो सटीकता में सुधार के लिए उनका उपयोग करें।\n")
		b.WriteString("यदि विवरण अमान्य या अप्रासंगिक हैं, तो उन्हें नजरअंदाज करें और गणना को केवल छवि पर आधारित करें।\n")
		b.WriteString("यह भी निर्धारित करें कि क्या यह भोजन मधुमेह वाले व्यक्ति के लिए उपयुक्त होगा, इस आधार पर:\n")
		b.WriteString("1. कुल कैलोरी\n2. चीनी सामग्री\n3. कार्बोहाइड्रेट सामग्री\n4. समग्र पोषण संतुलन")
	} else {
		fmt.Fprintf(&b, "Analyze this food image and the following user-provided details: %q.\n", description)
		b.WriteString("If the details are relevant and valid for calorie calculation, use them to improve the accuracy.\n")
		b.WriteString("If the details are invalid or irrelevant, ignore them and base the calculation on the image only.\n")
		b.WriteString("Also determine if this meal would be suitable for a diabetic person based on:\n")
		b.WriteString("1. Total calories\n2. Sugar content\n3. Carbohydrate content\n4. Overall nutritional balance")
	}

	if p != nil && p.Onboarded {
		prefs := strings.TrimSpace(p.DietaryPreference)
		if lang == i18n.Hindi {
			if prefs == "" {
				prefs = "कोई निर्दिष्ट नहीं"
			}
			b.WriteString("\n\nकृपया यह भी ध्यान रखें कि इस उपयोगकर्ता के पास:\n")
			fmt.Fprintf(&b, "- %s मधुमेह है\n", p.DiabetesType)
			fmt.Fprintf(&b, "- दैनिक कैलोरी सीमा %d kcal है\n", p.DailyLimit)
			fmt.Fprintf(&b, "- इनकी आहार संबंधी प्राथमिकताएँ हैं: %s", prefs)
		} else {
			if prefs == "" {
				prefs = "None specified"
			}
			b.WriteString("\n\nPlease also consider that this user:\n")
			fmt.Fprintf(&b, "- Has %s diabetes\n", p.DiabetesType)
			fmt.Fprintf(&b, "- Has a daily calorie limit of %d kcal\n", p.DailyLimit)
			fmt.Fprintf(&b, "- Has these dietary preferences: %s", prefs)
		}
	}

	if lang == i18n.Hindi {
		b.WriteString("\n\nअपना उत्तर इस सटीक प्रारूप में प्रदान करें (कोई मार्कडाउन नहीं, कोई कोड ब्लॉक नहीं):\n")
		b.WriteString(`{"calories": संख्या, "is_recommended": बूलियन, "reason": "मधुमेह रोगियों के लिए यह अनुशंसित है या नहीं, इसका कारण बताता हुआ वाक्य", "analysis": "भोजन का विस्तृत विश्लेषण", "personalized_tips": "उपयोगकर्ता के प्रोफाइल के आधार पर व्यक्तिगत आहार संबंधी सलाह"}`)
		b.WriteString("\n\nकृपया अपने सभी उत्तर हिंदी में प्रदान करें, केवल \"calories\" और \"is_recommended\" जैसे JSON कुंजी नाम अंग्रेजी में रखें।")
	} else {
		b.WriteString("\n\nProvide your response in this exact format (no markdown, no code blocks):\n")
		b.WriteString(`{"calories": number, "is_recommended": boolean, "reason": "string explaining why this is recommended or not for diabetics", "analysis": "detailed analysis of the meal", "personalized_tips": "personalized dietary advice based on the user's profile"}`)
	}
	return b.String()
}
