package models

// CurrentVersion 主数据文档版本号。目前只写不读，不做条件迁移。
const CurrentVersion = 3

// DefaultMasterDocument 内置默认文档。
// 持久化数据按集合逐条合并到该默认之上，升级内置默认（例如新增事故类型）
// 不会抹掉部署方的自定义数据。
func DefaultMasterDocument() *MasterDocument {
	return &MasterDocument{
		Version:   CurrentVersion,
		Companies: []Company{},
		Staff:     []StaffRecord{},
		Locations: []Location{
			{ID: "loc_kita_joban_1", Name: "北定盤1", QR: "LOC|北定盤1", Point: &Point{X: 180, Y: 120}},
			{ID: "loc_kita_joban_2", Name: "北定盤2", QR: "LOC|北定盤2", Point: &Point{X: 300, Y: 140}},
			{ID: "loc_minami_joban", Name: "南定盤", QR: "LOC|南定盤", Point: &Point{X: 260, Y: 420}},
			{ID: "loc_daiichi_kojo", Name: "第一工場", QR: "LOC|第一工場", Point: &Point{X: 560, Y: 380}},
			{ID: "loc_jimusho", Name: "事務所", QR: "LOC|事務所", Point: &Point{X: 820, Y: 90}},
			{ID: "loc_soko", Name: "倉庫", QR: "LOC|倉庫", Point: &Point{X: 880, Y: 480}},
		},
		Situations: []Situation{
			{
				ID:               "sit_fall",
				Label:            "転倒・転落",
				Icon:             "fall",
				RequiresBodyPart: true,
				DefaultAction:    ActionEmergency,
				Recipients: map[string][]string{
					ActionEmergency: {"grp_safety", "grp_managers"},
					ActionObserve:   {"grp_safety"},
				},
				Guidance: map[string]string{
					ActionEmergency: "動かさず、意識と呼吸を確認してください。",
					ActionObserve:   "安静にさせ、状態の変化を観察してください。",
				},
				SubjectTemplate: "【事故報告】{situation} {location}",
				BodyTemplate:    "発生場所: {location}\n事故種別: {situation} {tags}\n被災者: {victim}\n容態: {triage}\n備考: {note}\n発生時刻: {time}\n{guidance}",
			},
			{
				ID:               "sit_cut",
				Label:            "切創・裂傷",
				Icon:             "cut",
				RequiresBodyPart: true,
				DefaultAction:    ActionObserve,
				Recipients: map[string][]string{
					ActionEmergency: {"grp_safety", "grp_managers"},
					ActionObserve:   {"grp_safety"},
				},
				Guidance: map[string]string{
					ActionEmergency: "清潔な布で強く圧迫し、止血してください。",
					ActionObserve:   "傷口を洗浄し、絆創膏等で保護してください。",
				},
				SubjectTemplate: "【事故報告】{situation} {location}",
				BodyTemplate:    "発生場所: {location}\n事故種別: {situation} {tags}\n被災者: {victim}\n容態: {triage}\n備考: {note}\n発生時刻: {time}\n{guidance}",
			},
			{
				ID:               "sit_caught",
				Label:            "挟まれ・巻き込まれ",
				Icon:             "caught",
				RequiresBodyPart: true,
				DefaultAction:    ActionEmergency,
				Recipients: map[string][]string{
					ActionEmergency: {"grp_safety", "grp_managers"},
					ActionObserve:   {"grp_safety"},
				},
				Guidance: map[string]string{
					ActionEmergency: "機械を停止し、無理に引き抜かないでください。",
					ActionObserve:   "はれ・変色がないか観察してください。",
				},
				SubjectTemplate: "【事故報告】{situation} {location}",
				BodyTemplate:    "発生場所: {location}\n事故種別: {situation} {tags}\n被災者: {victim}\n容態: {triage}\n備考: {note}\n発生時刻: {time}\n{guidance}",
			},
			{
				ID:               "sit_heat",
				Label:            "熱中症",
				Icon:             "heat",
				RequiresBodyPart: false,
				DefaultAction:    ActionObserve,
				Recipients: map[string][]string{
					ActionEmergency: {"grp_safety", "grp_managers"},
					ActionObserve:   {"grp_safety"},
				},
				Guidance: map[string]string{
					ActionEmergency: "涼しい場所へ移動し、体を冷やしながら救急車を待ってください。",
					ActionObserve:   "涼しい場所で水分と塩分を補給させてください。",
				},
				SubjectTemplate: "【事故報告】{situation} {location}",
				BodyTemplate:    "発生場所: {location}\n事故種別: {situation}\n被災者: {victim}\n容態: {triage}\n備考: {note}\n発生時刻: {time}\n{guidance}",
			},
		},
		BodyParts: []BodyPart{
			{ID: "bp_head", Label: "頭部"},
			{ID: "bp_face", Label: "顔面"},
			{ID: "bp_arm", Label: "腕"},
			{ID: "bp_hand", Label: "手・指"},
			{ID: "bp_torso", Label: "胴体"},
			{ID: "bp_leg", Label: "脚"},
			{ID: "bp_foot", Label: "足"},
		},
		ContactGroups: []ContactGroup{
			{ID: "grp_safety", Name: "安全課", Emails: []string{"safety@example.co.jp"}, Enabled: true},
			{ID: "grp_managers", Name: "管理職", Emails: []string{"managers@example.co.jp"}, Enabled: true},
			{ID: "grp_infirmary", Name: "医務室", Emails: []string{"infirmary@example.co.jp"}, Enabled: false},
		},
		Credentials: Credentials{},
	}
}
